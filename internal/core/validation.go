package core

// validation.go checks that every record in a group lines up with the
// group's first record.
//
// Table columns are positional: the header comes from the first record's
// names and every row's values are emitted under it by index. A record whose
// names differ would silently shift values under the wrong column, so the
// group is validated before a table is assembled. Records are never padded
// or truncated.

import (
	"fmt"
	"strings"
)

// AlignRecords validates the records of one group against its first record
// and returns the records to emit. Under MismatchAlignByName a record with
// the same multiset of names is reordered to the first record's order.
func AlignRecords(records []ItemRecord, policy MismatchPolicy) ([]ItemRecord, error) {
	if len(records) == 0 {
		return records, nil
	}

	want := records[0].Measurements.Names()
	out := make([]ItemRecord, len(records))
	out[0] = records[0]

	for i := 1; i < len(records); i++ {
		rec := records[i]
		if sameNames(want, rec.Measurements) {
			out[i] = rec
			continue
		}

		if policy == MismatchAlignByName {
			if aligned, ok := alignByName(want, rec.Measurements); ok {
				rec.Measurements = aligned
				out[i] = rec
				continue
			}
		}

		return nil, &RowError{
			Line:     rec.Line,
			ItemText: rec.ItemCode.String(),
			Err: fmt.Errorf("%w: got [%s], want [%s]",
				ErrMeasurementMismatch,
				strings.Join(rec.Measurements.Names(), " "),
				strings.Join(want, " ")),
		}
	}
	return out, nil
}

func sameNames(want []string, set MeasurementSet) bool {
	if len(want) != len(set) {
		return false
	}
	for i, m := range set {
		if m.Name != want[i] {
			return false
		}
	}
	return true
}

// alignByName reorders set so its names follow want. Repeated names are
// matched in their order of appearance.
func alignByName(want []string, set MeasurementSet) (MeasurementSet, bool) {
	if len(want) != len(set) {
		return nil, false
	}

	byName := make(map[string][]Measurement, len(set))
	for _, m := range set {
		byName[m.Name] = append(byName[m.Name], m)
	}

	aligned := make(MeasurementSet, 0, len(want))
	for _, name := range want {
		queue := byName[name]
		if len(queue) == 0 {
			return nil, false
		}
		aligned = append(aligned, queue[0])
		byName[name] = queue[1:]
	}
	return aligned, true
}
