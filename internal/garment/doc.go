// Package garment provides the item code and size code value types read from
// product spreadsheets.
//
// Both types are opaque: they are only constructed through ParseItemCode and
// ParseSizeCode, and expose a canonical String form. SizeCode additionally
// renders the ordinal label used as the first column of a size table.
package garment
