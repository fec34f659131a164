package sheet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/sizetable/internal/core"
)

// buildWorkbook writes rows to a new workbook and returns its bytes.
func buildWorkbook(t *testing.T, sheetName string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{name: "sizes.xlsx", want: FormatXLSX},
		{name: "SIZES.XLSX", want: FormatXLSX},
		{name: "sizes.csv", want: FormatCSV},
		{name: "sizes.xls", wantErr: true},
		{name: "sizes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFile) {
					t.Errorf("DetectFormat(%q) error = %v, want ErrUnsupportedFile", tt.name, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, %v, want %v", tt.name, got, err, tt.want)
			}
		})
	}
}

func TestDecodeXLSX(t *testing.T) {
	data := buildWorkbook(t, "サイズ表", [][]any{
		{"品番", "SZ", "採寸"},
		{"A001", "01", "肩幅:42.5 胸囲:104"},
		{"A001", "02", "肩幅:43.5 胸囲:106"},
	})

	s, err := Decode(bytes.NewReader(data), "upload.xlsx", Options{})
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if s.Name != "サイズ表" {
		t.Errorf("Name = %q, want first worksheet", s.Name)
	}
	if got := s.Header.Text(2); got != "採寸" {
		t.Errorf("Header[2] = %q, want 採寸", got)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(s.Rows))
	}
	if got := s.Rows[1].Text(2); got != "肩幅:43.5 胸囲:106" {
		t.Errorf("Rows[1][2] = %q", got)
	}
}

func TestDecodeXLSX_MissingSheet(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]any{{"品番"}})

	_, err := DecodeXLSX(bytes.NewReader(data), "Other")
	if !errors.Is(err, ErrNoSheet) {
		t.Errorf("DecodeXLSX() error = %v, want ErrNoSheet", err)
	}
}

func TestDecodeXLSX_NotAWorkbook(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("not a zip"), "")
	if err == nil || !strings.Contains(err.Error(), "invalid xlsx") {
		t.Errorf("DecodeXLSX() error = %v, want invalid xlsx", err)
	}
}

func TestDecodeCSV(t *testing.T) {
	input := "\xEF\xBB\xBF品番,SZ,採寸\nA001,S,\"肩幅:42 胸囲:100\"\nA001,M\n"

	s, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() unexpected error: %v", err)
	}
	if got := s.Header.Text(0); got != "品番" {
		t.Errorf("Header[0] = %q, want 品番 without BOM", got)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(s.Rows))
	}
	if got := s.Rows[0].Text(2); got != "肩幅:42 胸囲:100" {
		t.Errorf("Rows[0][2] = %q", got)
	}
	if got := s.Rows[1].Text(2); got != "" {
		t.Errorf("short row cell = %q, want empty", got)
	}
}

func TestDecodeCSV_Empty(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader(""))
	if !errors.Is(err, core.ErrEmptySheet) {
		t.Errorf("DecodeCSV() error = %v, want ErrEmptySheet", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	input := strings.Repeat("品番,SZ,採寸\n", 100)

	_, err := Decode(strings.NewReader(input), "big.csv", Options{MaxBytes: 64})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Decode() error = %v, want ErrFileTooLarge", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizes.csv")
	if err := os.WriteFile(path, []byte("品番,SZ,採寸\nA1,S,x:1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	if len(s.Rows) != 1 || s.Rows[0].Text(0) != "A1" {
		t.Errorf("Open() rows = %v", s.Rows)
	}
}
