// Package sheet decodes uploaded spreadsheets into core rows.
//
// Two formats are supported: Excel workbooks (.xlsx, read with excelize) and
// comma-separated text (.csv). The first row is the header; every following
// row is data.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sizetable/internal/core"
)

var (
	// ErrUnsupportedFile is returned for a file extension other than .xlsx or .csv.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrNoSheet is returned when a workbook has no worksheet with the requested name.
	ErrNoSheet = errors.New("worksheet not found")
)

// Format is a spreadsheet file format.
type Format int

const (
	FormatXLSX Format = iota + 1
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from a file name's extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFile, filepath.Ext(fileName))
	}
}

// Sheet is a decoded spreadsheet.
type Sheet struct {
	Name   string
	Header core.Row
	Rows   []core.Row
}

// Options configures decoding.
type Options struct {
	SheetName string // worksheet to read; the first worksheet when empty
	MaxBytes  int64  // input size limit; unlimited when zero
}

// Decode reads a spreadsheet from r. fileName selects the format.
func Decode(r io.Reader, fileName string, opts Options) (*Sheet, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	limited := NewLimitReader(r, opts.MaxBytes)
	switch format {
	case FormatXLSX:
		return DecodeXLSX(limited, opts.SheetName)
	default:
		return DecodeCSV(limited)
	}
}

// Open reads a spreadsheet file from disk.
func Open(path string, opts Options) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, filepath.Base(path), opts)
}

// DecodeXLSX reads one worksheet of an Excel workbook.
func DecodeXLSX(r io.Reader, sheetName string) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		names := f.GetSheetList()
		if len(names) == 0 {
			return nil, ErrNoSheet
		}
		sheetName = names[0]
	}
	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSheet, sheetName)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: read %s: %w", sheetName, err)
	}
	return fromStrings(sheetName, rows)
}

// DecodeCSV reads comma-separated text. Rows may have differing lengths.
func DecodeCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(WrapText(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return fromStrings("", rows)
}

func fromStrings(name string, rows [][]string) (*Sheet, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", core.ErrEmptySheet)
	}

	s := &Sheet{
		Name:   name,
		Header: core.TextRow(rows[0]...),
		Rows:   make([]core.Row, 0, len(rows)-1),
	}
	for _, cells := range rows[1:] {
		s.Rows = append(s.Rows, core.TextRow(cells...))
	}
	return s, nil
}
