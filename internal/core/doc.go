// Package core provides the row-to-table extraction pipeline for garment
// size sheets.
//
// This package has no UI or transport dependencies. It is used by the HTTP
// server, the CLI and tests without modification.
//
// # Architecture
//
// A run moves through four steps, each usable on its own:
//
//   - Classification: [ClassifyColumns] locates the item code, size code and
//     measurement text columns in the header using a registered [LabelSet].
//   - Grouping: [GroupRows] drops blank and duplicate rows, sorts by item code
//     and splits the rows into contiguous per-item groups.
//   - Parsing: [ParseMeasurements] turns free-text cells such as
//     "肩幅:42.5 胸囲:104" into an ordered [MeasurementSet].
//   - Assembly: [Pipeline.BuildTables] resolves measurement names through a
//     [NameResolver] and emits one [ItemTable] per item.
//
// # Label Sets
//
// Header labels are registered at init time using [RegisterLabelSet]. The
// labels subpackage registers the Japanese ("ja") and English ("en") sets:
//
//	core.RegisterLabelSet(core.LabelSet{
//	    Name: "ja",
//	    Labels: map[core.ColumnRole][]string{
//	        core.RoleItemCode:    {"品番"},
//	        core.RoleSizeCode:    {"SZ"},
//	        core.RoleMeasurement: {"採寸"},
//	    },
//	})
//
// # Error Handling
//
// Every failure is returned as a value and aborts the run. Errors wrap the
// package sentinels so callers can use errors.Is, and technical errors are
// mapped to user-facing messages using [MapError]:
//
//   - MEA001-MEA002: Measurement text errors
//   - COL001: Header column errors
//   - SHT001: Empty sheet
//   - ROW001-ROW002: Duplicate and mismatched rows
//   - CODE001-CODE002: Item and size code errors
//   - TRN001-TRN002: Remote translation errors
//   - FILE001-FILE004: File errors (size, format, encoding)
//   - RUN001-RUN003: Run errors (busy, cancelled, timeout)
package core
