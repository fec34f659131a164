package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/sizetable/internal/garment"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "empty measurement maps correctly",
			err:         ErrEmptyMeasurementText,
			wantCode:    "MEA001",
			wantMessage: "A measurement cell is empty",
		},
		{
			name:        "invalid token wrapped in row error",
			err:         &RowError{Line: 3, ItemText: "A001", Err: &MeasurementError{Text: "ヒップ104", Token: "ヒップ104", Err: ErrInvalidMeasurementToken}},
			wantCode:    "MEA002",
			wantMessage: "A measurement is not written as name:value",
		},
		{
			name:        "column error maps correctly",
			err:         &ColumnError{Missing: []ColumnRole{RoleMeasurement}},
			wantCode:    "COL001",
			wantMessage: "Item code, size or measurement column is missing or repeated",
		},
		{
			name:        "empty sheet maps correctly",
			err:         ErrEmptySheet,
			wantCode:    "SHT001",
			wantMessage: "The sheet has no data rows",
		},
		{
			name:        "duplicate row maps correctly",
			err:         fmt.Errorf("%w: size %q", ErrDuplicateRow, "M"),
			wantCode:    "ROW001",
			wantMessage: "The same item and size appear twice",
		},
		{
			name:        "size code maps correctly",
			err:         fmt.Errorf("line 2: %w", garment.ErrInvalidSizeCode),
			wantCode:    "CODE002",
			wantMessage: "Invalid size code",
		},
		{
			name:        "remote failure maps correctly",
			err:         errors.New("remote translation failed: Glossary not found"),
			wantCode:    "TRN001",
			wantMessage: "The translation service rejected the request",
		},
		{
			name:        "remote timeout maps to unavailable",
			err:         fmt.Errorf("remote translation unavailable: %w", context.DeadlineExceeded),
			wantCode:    "TRN002",
			wantMessage: "The translation service could not be reached",
		},
		{
			name:        "bad glossary csv is not a sheet file error",
			err:         errors.New("invalid csv glossary: record on line 2: wrong number of fields"),
			wantCode:    "GLS002",
			wantMessage: "The glossary file could not be read",
		},
		{
			name:        "missing glossary store maps correctly",
			err:         errors.New("glossary store not configured"),
			wantCode:    "GLS001",
			wantMessage: "Glossary import is not available",
		},
		{
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 200MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "busy limiter maps correctly",
			err:         errors.New("too many concurrent runs, please try again later"),
			wantCode:    "RUN001",
			wantMessage: "System is busy processing other sheets",
		},
		{
			name:        "deadline maps correctly",
			err:         context.DeadlineExceeded,
			wantCode:    "RUN003",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("UNSUPPORTED FILE type .pdf"),
			wantCode:    "FILE002",
			wantMessage: "File type is not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrEmptySheet)

	expected := "The sheet has no data rows (Code: SHT001). Add at least one data row below the header"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "pipeline error is user facing",
			err:  &RowError{Line: 4, Err: ErrMeasurementMismatch},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("line 7: %w", ErrDuplicateRow)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The same item and size appear twice" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrDuplicateRow) {
			t.Error("Unwrap() should expose the original error chain")
		}
	})
}
