package core

import (
	"strings"

	"github.com/JonMunkholm/sizetable/internal/garment"
)

// Row is one spreadsheet row of untyped cell values.
type Row []any

// Text returns cell i as trimmed text. A missing cell reads as "".
func (r Row) Text(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return CleanCell(CellText(r[i]))
}

// IsBlank reports whether every cell in the row is empty after trimming.
func (r Row) IsBlank() bool {
	for i := range r {
		if r.Text(i) != "" {
			return false
		}
	}
	return true
}

// TextRow builds a Row from string cells.
func TextRow(cells ...string) Row {
	row := make(Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// Measurement is one name/value pair parsed from a measurement cell.
// Both fields are non-empty.
type Measurement struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MeasurementSet is the ordered pairs of one measurement cell, in the order
// they appeared. Duplicate names are kept.
type MeasurementSet []Measurement

// Names returns the measurement names in order.
func (s MeasurementSet) Names() []string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.Name
	}
	return names
}

// Values returns the measurement values in order.
func (s MeasurementSet) Values() []string {
	values := make([]string, len(s))
	for i, m := range s {
		values[i] = m.Value
	}
	return values
}

// String re-joins the set as "name:value" tokens separated by single spaces.
func (s MeasurementSet) String() string {
	tokens := make([]string, len(s))
	for i, m := range s {
		tokens[i] = m.Name + ":" + m.Value
	}
	return strings.Join(tokens, " ")
}

// ItemRecord is one parsed data row.
type ItemRecord struct {
	Line         int
	ItemCode     garment.ItemCode
	SizeCode     garment.SizeCode
	Measurements MeasurementSet
}

// SourceRow is a raw data row with its 1-based sheet line (the header is line 1).
type SourceRow struct {
	Line int
	Row  Row
}

// RowGroup holds the raw rows sharing one item code cell text.
type RowGroup struct {
	ItemText string
	Rows     []SourceRow
}

// ItemTable is the size table for one item.
type ItemTable struct {
	Code     string     `json:"code"`
	SizeCode string     `json:"size_code"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

// DuplicatePolicy controls how rows repeating an (item code, size code) pair
// are handled.
type DuplicatePolicy int

const (
	// DuplicateKeepFirst keeps the first occurrence and drops later ones.
	DuplicateKeepFirst DuplicatePolicy = iota
	// DuplicateError fails the run on the first repeated pair.
	DuplicateError
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateKeepFirst:
		return "keep-first"
	case DuplicateError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseDuplicatePolicy parses "keep-first" or "error".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-first", "keep_first":
		return DuplicateKeepFirst, true
	case "error":
		return DuplicateError, true
	default:
		return DuplicateKeepFirst, false
	}
}

// MismatchPolicy controls rows whose measurement names differ from the first
// row of their group.
type MismatchPolicy int

const (
	// MismatchReject fails the run.
	MismatchReject MismatchPolicy = iota
	// MismatchAlignByName reorders values to the first row's name order when
	// both rows carry the same names; any other difference still fails.
	MismatchAlignByName
)

func (p MismatchPolicy) String() string {
	switch p {
	case MismatchReject:
		return "reject"
	case MismatchAlignByName:
		return "align-by-name"
	default:
		return "unknown"
	}
}

// ParseMismatchPolicy parses "reject" or "align-by-name".
func ParseMismatchPolicy(s string) (MismatchPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return MismatchReject, true
	case "align-by-name", "align_by_name", "align":
		return MismatchAlignByName, true
	default:
		return MismatchReject, false
	}
}
