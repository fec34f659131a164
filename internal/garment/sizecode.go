package garment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidSizeCode is returned when a size code cell cannot be parsed.
var ErrInvalidSizeCode = errors.New("invalid size code")

// MaxNumericSize is the largest numeric size code accepted.
const MaxNumericSize = 99

// letterSizes maps accepted letter spellings to their canonical label.
// Japanese retail codes (LL, 2L, 3L, 4L) fold into the XL family.
var letterSizes = map[string]string{
	"XXS":  "XXS",
	"XS":   "XS",
	"S":    "S",
	"M":    "M",
	"L":    "L",
	"XL":   "XL",
	"LL":   "XL",
	"2L":   "XL",
	"XXL":  "XXL",
	"3L":   "XXL",
	"XXXL": "XXXL",
	"4L":   "XXXL",
}

var freeSizes = map[string]bool{
	"F":    true,
	"FR":   true,
	"FREE": true,
}

type sizeKind int

const (
	sizeNumeric sizeKind = iota + 1
	sizeLetter
	sizeFree
)

// SizeCode is a garment size: a numeric code ("01", "2"), a letter size
// ("M", "XL") or free size ("F").
type SizeCode struct {
	kind   sizeKind
	number int
	label  string
}

// ParseSizeCode parses a size code cell. Letters are case-insensitive and
// numeric codes may carry leading zeros.
func ParseSizeCode(s string) (SizeCode, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return SizeCode{}, fmt.Errorf("%w: empty", ErrInvalidSizeCode)
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > MaxNumericSize {
			return SizeCode{}, fmt.Errorf("%w: %q out of range 1-%d", ErrInvalidSizeCode, s, MaxNumericSize)
		}
		return SizeCode{kind: sizeNumeric, number: n, label: fmt.Sprintf("%02d", n)}, nil
	}

	if label, ok := letterSizes[raw]; ok {
		return SizeCode{kind: sizeLetter, label: label}, nil
	}
	if freeSizes[raw] {
		return SizeCode{kind: sizeFree, label: "F"}, nil
	}

	return SizeCode{}, fmt.Errorf("%w: %q", ErrInvalidSizeCode, s)
}

// String returns the canonical size code ("01", "M", "F").
func (c SizeCode) String() string {
	return c.label
}

// OrdinalLabel returns the label shown in the first column of a size table.
// Numeric codes render as roman numerals; letter and free sizes render as
// their canonical label.
func (c SizeCode) OrdinalLabel() string {
	if c.kind == sizeNumeric {
		return Roman(c.number)
	}
	return c.label
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman renders n (1-3999) as a roman numeral. Out-of-range values render
// as decimal.
func Roman(n int) string {
	if n < 1 || n > 3999 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
