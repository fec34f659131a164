package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyMeasurementText is returned for an empty or whitespace-only measurement cell.
	ErrEmptyMeasurementText = errors.New("empty measurement text")
	// ErrInvalidMeasurementToken is returned for a token that is not "name:value".
	ErrInvalidMeasurementToken = errors.New("invalid measurement token")
	// ErrMissingOrAmbiguousColumns is returned when a column role matches zero or several header cells.
	ErrMissingOrAmbiguousColumns = errors.New("missing or ambiguous columns")
	// ErrEmptySheet is returned when there are no data rows.
	ErrEmptySheet = errors.New("empty sheet")
	// ErrDuplicateRow is returned under DuplicateError for a repeated (item, size) pair.
	ErrDuplicateRow = errors.New("duplicate row")
	// ErrMeasurementMismatch is returned when a row's measurement names differ from its group's first row.
	ErrMeasurementMismatch = errors.New("measurement names do not match first row")
	// ErrUnknownLabelSet is returned when a label set name is not registered.
	ErrUnknownLabelSet = errors.New("unknown label set")
)

// MeasurementError reports an invalid measurement cell.
type MeasurementError struct {
	Text  string // whole cell text
	Token string // offending token
	Err   error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("%v: %q in %q", e.Err, e.Token, e.Text)
}

func (e *MeasurementError) Unwrap() error {
	return e.Err
}

// ColumnError reports header roles that were not found exactly once.
type ColumnError struct {
	Missing    []ColumnRole
	Duplicated []ColumnRole
}

func (e *ColumnError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinRoles(e.Missing))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, "duplicated "+joinRoles(e.Duplicated))
	}
	return fmt.Sprintf("%v: %s", ErrMissingOrAmbiguousColumns, strings.Join(parts, "; "))
}

func (e *ColumnError) Unwrap() error {
	return ErrMissingOrAmbiguousColumns
}

// RowError attaches the sheet line and item text to a row-level failure.
type RowError struct {
	Line     int
	ItemText string
	Err      error
}

func (e *RowError) Error() string {
	if e.ItemText != "" {
		return fmt.Sprintf("line %d (item %s): %v", e.Line, e.ItemText, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func joinRoles(roles []ColumnRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}
