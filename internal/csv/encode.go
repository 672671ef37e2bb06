package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// Encode writes ds as comma-separated text with a header row and no index
// column. Missing cells are written empty.
func Encode(w io.Writer, ds *table.Dataset) error {
	return EncodeWith(w, ds, ',')
}

// EncodeWith is Encode with a custom field delimiter.
func EncodeWith(w io.Writer, ds *table.Dataset, comma rune) error {
	cw := stdcsv.NewWriter(w)
	cw.Comma = comma

	header, rows := ds.Records()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
