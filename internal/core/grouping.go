package core

import (
	"fmt"
	"sort"
)

// FirstDataLine is the sheet line of the first data row; the header is line 1.
const FirstDataLine = 2

type rowKey struct {
	item string
	size string
}

// GroupRows splits data rows into per-item groups.
//
// Blank rows are dropped first. Rows repeating an (item code, size code)
// cell pair are then handled by policy: DuplicateKeepFirst keeps the first
// occurrence, DuplicateError fails with ErrDuplicateRow. The remaining rows
// are stable-sorted by item code text (byte order) and split wherever the
// item code changes, so rows of one item keep their input order.
func GroupRows(rows []Row, cols Columns, policy DuplicatePolicy) ([]RowGroup, error) {
	seen := make(map[rowKey]int, len(rows))
	kept := make([]SourceRow, 0, len(rows))

	for i, row := range rows {
		line := FirstDataLine + i
		if row.IsBlank() {
			continue
		}

		key := rowKey{item: row.Text(cols.Item), size: row.Text(cols.Size)}
		if first, dup := seen[key]; dup {
			if policy == DuplicateError {
				return nil, &RowError{
					Line:     line,
					ItemText: key.item,
					Err:      fmt.Errorf("%w: size %q already on line %d", ErrDuplicateRow, key.size, first),
				}
			}
			continue
		}
		seen[key] = line
		kept = append(kept, SourceRow{Line: line, Row: row})
	}

	if len(kept) == 0 {
		return nil, ErrEmptySheet
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Row.Text(cols.Item) < kept[j].Row.Text(cols.Item)
	})

	var groups []RowGroup
	for _, sr := range kept {
		item := sr.Row.Text(cols.Item)
		if len(groups) == 0 || groups[len(groups)-1].ItemText != item {
			groups = append(groups, RowGroup{ItemText: item})
		}
		last := &groups[len(groups)-1]
		last.Rows = append(last.Rows, sr)
	}
	return groups, nil
}
