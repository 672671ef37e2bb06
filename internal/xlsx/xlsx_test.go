package xlsx

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// workbook builds an in-memory xlsx with the given rows on sheet.
func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestDecode(t *testing.T) {
	buf := workbook(t, DefaultSheet, [][]any{
		{"id", "age", ""},
		{1, 20, "x"},
		{2, "NA"},
		{3, nil, nil, "extra"},
	})

	ds, err := Decode(buf, Options{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []string{"id", "age", "Unnamed: 2", "Unnamed: 3"}
	if got := ds.ColumnNames(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("ColumnNames() = %q, want %q", got, want)
	}
	if ds.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", ds.RowCount())
	}
	if v, _ := ds.Cell(0, "age"); v != "20" {
		t.Errorf("Cell(0, age) = %q, want 20", v)
	}
	age, _ := ds.Column("age")
	if !age.IsMissing(1) || !age.IsMissing(2) {
		t.Error("NA and blank cells should be missing")
	}
}

func TestDecode_SelectSheet(t *testing.T) {
	buf := workbook(t, "Data", [][]any{{"a"}, {"x"}})

	ds, err := Decode(bytes.NewReader(buf.Bytes()), Options{Sheet: "Data"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v, _ := ds.Cell(0, "a"); v != "x" {
		t.Errorf("Cell(0, a) = %q", v)
	}

	_, err = Decode(bytes.NewReader(buf.Bytes()), Options{Sheet: "Missing"})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("error = %v, want ErrSheetNotFound", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("id,age\n1,2\n"), Options{})
	if err == nil || !strings.Contains(err.Error(), "invalid spreadsheet") {
		t.Errorf("error = %v, want invalid spreadsheet", err)
	}

	_, err = Decode(workbook(t, DefaultSheet, nil), Options{})
	if !errors.Is(err, ErrEmptySheet) {
		t.Errorf("error = %v, want ErrEmptySheet", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	ds, err := table.New([]string{"name", "score"}, [][]string{
		{"alice", "1.5"},
		{"", "bad"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ds.CoerceColumnNumeric("score"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, ds); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue(DefaultSheet, "B2"); v != "1.5" {
		t.Errorf("B2 = %q, want 1.5", v)
	}
	if typ, _ := f.GetCellType(DefaultSheet, "B2"); typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		t.Errorf("B2 type = %v, want number", typ)
	}
	if v, _ := f.GetCellValue(DefaultSheet, "A3"); v != "" {
		t.Errorf("A3 = %q, want blank", v)
	}
	if v, _ := f.GetCellValue(DefaultSheet, "A1"); v != "name" {
		t.Errorf("A1 = %q, want name", v)
	}
}
