// Package core provides the row-to-table extraction pipeline.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Sheet Errors (MEA, COL, SHT, ROW, CODE)
//
// Errors raised by the pipeline itself. These are matched with errors.Is, so
// wrapping with %w keeps the code stable:
//
//	MEA001 - Empty measurement: A measurement cell is empty
//	         Action: Fill in the measurement text for every row
//
//	MEA002 - Invalid measurement: A measurement is not written as name:value
//	         Action: Write each measurement as name:value separated by spaces
//
//	COL001 - Missing columns: Item code, size or measurement column missing or repeated
//	         Action: Check the header row uses the expected labels exactly once
//
//	SHT001 - Empty sheet: The sheet has no data rows
//	         Action: Add at least one data row below the header
//
//	ROW001 - Duplicate row: The same item and size appear twice
//	         Action: Remove the repeated row
//
//	ROW002 - Measurement mismatch: A row lists different measurements than the first size
//	         Action: Use the same measurement names, in the same order, for every size
//
//	CODE001 - Invalid item code
//	CODE002 - Invalid size code
//
// # Translation Errors (TRN001-TRN099)
//
//	TRN001 - Translation failed: The translation service rejected the request
//	         Patterns: "remote translation failed"
//
//	TRN002 - Translation unavailable: The translation service could not be reached
//	         Patterns: "remote translation unavailable"
//
// # Glossary and Request Errors (GLS, REQ)
//
//	GLS001 - Import unavailable    Patterns: "glossary store not configured"
//	GLS002 - Bad glossary file     Patterns: "invalid csv glossary"
//	REQ001 - Bad request           Patterns: "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large       Patterns: "file too large"
//	FILE002 - Unsupported file     Patterns: "unsupported file", "invalid csv", "invalid xlsx"
//	FILE003 - Encoding error       Patterns: "encoding error"
//	FILE004 - No file              Patterns: "no file provided"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy           Patterns: "too many concurrent runs"
//	RUN002 - Request cancelled     Patterns: "context canceled"
//	RUN003 - Request timeout       Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited         Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no sentinel or pattern matches. Support staff should check
// application logs for the original technical error.
//
// # Pattern Matching
//
// Sentinel errors are checked first, in table order. Remaining errors are
// matched case-insensitively using strings.Contains; the first matching
// pattern wins.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sizetable/internal/garment"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

// errorSentinels maps pipeline sentinels to user messages.
var errorSentinels = []errorSentinel{
	{
		target: ErrEmptyMeasurementText,
		msg: UserMessage{
			Message: "A measurement cell is empty",
			Action:  "Fill in the measurement text for every row",
			Code:    "MEA001",
		},
	},
	{
		target: ErrInvalidMeasurementToken,
		msg: UserMessage{
			Message: "A measurement is not written as name:value",
			Action:  "Write each measurement as name:value separated by spaces",
			Code:    "MEA002",
		},
	},
	{
		target: ErrMissingOrAmbiguousColumns,
		msg: UserMessage{
			Message: "Item code, size or measurement column is missing or repeated",
			Action:  "Check the header row uses the expected labels exactly once",
			Code:    "COL001",
		},
	},
	{
		target: ErrUnknownLabelSet,
		msg: UserMessage{
			Message: "Header label set is not configured",
			Action:  "Choose one of the configured label sets",
			Code:    "COL001",
		},
	},
	{
		target: ErrEmptySheet,
		msg: UserMessage{
			Message: "The sheet has no data rows",
			Action:  "Add at least one data row below the header",
			Code:    "SHT001",
		},
	},
	{
		target: ErrDuplicateRow,
		msg: UserMessage{
			Message: "The same item and size appear twice",
			Action:  "Remove the repeated row",
			Code:    "ROW001",
		},
	},
	{
		target: ErrMeasurementMismatch,
		msg: UserMessage{
			Message: "A row lists different measurements than the first size of its item",
			Action:  "Use the same measurement names, in the same order, for every size",
			Code:    "ROW002",
		},
	},
	{
		target: garment.ErrInvalidItemCode,
		msg: UserMessage{
			Message: "Invalid item code",
			Action:  "Use letters, digits, '-', '_' or '.' in item codes",
			Code:    "CODE001",
		},
	},
	{
		target: garment.ErrInvalidSizeCode,
		msg: UserMessage{
			Message: "Invalid size code",
			Action:  "Use a size number (01-99), a letter size such as M or XL, or F",
			Code:    "CODE002",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Translation Errors (TRN001-TRN002)
	// =========================================================================
	{
		pattern: "remote translation failed",
		msg: UserMessage{
			Message: "The translation service rejected the request",
			Action:  "Check the translation settings or add the names to the glossary",
			Code:    "TRN001",
		},
	},
	{
		pattern: "remote translation unavailable",
		msg: UserMessage{
			Message: "The translation service could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "TRN002",
		},
	},

	// =========================================================================
	// Glossary and Request Errors (GLS001-GLS002, REQ001)
	// =========================================================================
	{
		pattern: "glossary store not configured",
		msg: UserMessage{
			Message: "Glossary import is not available",
			Action:  "Configure DATABASE_URL to enable glossary imports",
			Code:    "GLS001",
		},
	},
	{
		pattern: "invalid csv glossary",
		msg: UserMessage{
			Message: "The glossary file could not be read",
			Action:  "Upload a CSV with a source,target header and two columns per row",
			Code:    "GLS002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body format",
			Code:    "REQ001",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the sheet into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file",
		msg: UserMessage{
			Message: "File type is not supported",
			Action:  "Upload an .xlsx or .csv file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the file again as .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a sheet to upload",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN003)
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "System is busy processing other sheets",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "RUN003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Pipeline sentinels are matched with errors.Is; other errors are matched
// against known patterns. If nothing matches, a generic fallback message
// with code ERR000 is returned.
//
// Example:
//
//	_, err := core.ParseMeasurements("ヒップ104")
//	msg := MapError(err)
//	// msg.Code == "MEA002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
