// Package csv loads and saves datasets as delimited text.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("empty file: no header row")

// Options controls decoding. The zero value reads comma-separated UTF-8
// with table.DefaultMissingTokens.
type Options struct {
	Encoding      string
	Comma         rune
	MissingTokens []string
}

// Decode reads a header row and data rows into a text-typed dataset.
func Decode(r io.Reader, opts Options) (*table.Dataset, error) {
	src, err := DecodingReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := stdcsv.NewReader(src)
	cr.FieldsPerRecord = -1
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		var pe *stdcsv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return table.New(table.CleanHeader(records[0]), records[1:], table.MissingSet(opts.MissingTokens))
}
