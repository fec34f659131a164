package core

// convert.go turns untyped spreadsheet cells into text.
//
// Cells arrive as whatever the decoder produced: strings from CSV and most
// xlsx cells, but also numbers, booleans and nil for programmatic input.
// Numbers render without a trailing ".0" so that a size code typed as 1
// reads as "1", not "1.0".

import (
	"fmt"
	"strconv"
	"strings"
)

// CellText converts a cell value to its text form. nil reads as "".
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace, including full-width spaces
// - Removes Excel formula prefix (="...")
// - Removes a leading byte order mark
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return strings.TrimSpace(s)
}
