package garment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidItemCode is returned when an item code cell cannot be parsed.
var ErrInvalidItemCode = errors.New("invalid item code")

// itemCodePattern accepts ASCII product codes such as "A001", "MR-2231" or "AB_12.3".
var itemCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// ItemCode identifies one garment item.
type ItemCode struct {
	code string
}

// ParseItemCode parses an item code cell.
// Inner spaces are rewritten to underscores before validation, so "AB 12"
// becomes "AB_12".
func ParseItemCode(s string) (ItemCode, error) {
	code := strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	if code == "" {
		return ItemCode{}, fmt.Errorf("%w: empty", ErrInvalidItemCode)
	}
	if !itemCodePattern.MatchString(code) {
		return ItemCode{}, fmt.Errorf("%w: %q", ErrInvalidItemCode, s)
	}
	return ItemCode{code: code}, nil
}

// String returns the canonical item code.
func (c ItemCode) String() string {
	return c.code
}
