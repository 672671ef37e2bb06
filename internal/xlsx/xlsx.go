// Package xlsx loads and saves datasets as Excel workbooks.
package xlsx

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// DefaultSheet is the sheet name written by Encode.
const DefaultSheet = "Sheet1"

var (
	ErrNoSheets      = errors.New("invalid spreadsheet: workbook has no sheets")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrEmptySheet    = errors.New("empty file: sheet has no header row")
)

// Options controls decoding.
type Options struct {
	// Sheet selects a worksheet by name. Empty means the first sheet.
	Sheet         string
	MissingTokens []string
}

// Decode reads one worksheet into a text-typed dataset. The first row is
// the header. Data rows wider than the header add "Unnamed" columns.
func Decode(r io.Reader, opts Options) (*table.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	sheet := sheets[0]
	if opts.Sheet != "" {
		if idx, _ := f.GetSheetIndex(opts.Sheet); idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, opts.Sheet)
		}
		sheet = opts.Sheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	header := rows[0]
	for _, row := range rows[1:] {
		for len(header) < len(row) {
			header = append(header, "")
		}
	}

	return table.New(table.CleanHeader(header), rows[1:], table.MissingSet(opts.MissingTokens))
}

// Encode writes ds to a single-sheet workbook. Numeric columns are written
// as numbers and missing cells are left blank.
func Encode(w io.Writer, ds *table.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	names := ds.ColumnNames()
	header := make([]any, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	cols := ds.Columns()
	for r := 0; r < ds.RowCount(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowCells(cols, r)); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

func rowCells(cols []*table.Column, r int) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		switch {
		case c.IsMissing(r):
			out[i] = nil
		case c.Type == table.FieldNumeric:
			out[i] = c.Float(r).Float64
		default:
			out[i] = c.Text(r).String
		}
	}
	return out
}
