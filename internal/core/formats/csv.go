package formats

import (
	"io"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/csv"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

func init() {
	registerDelimited("csv", "CSV (*.csv)", ',', "text/csv; charset=utf-8", ".csv")
	registerDelimited("tsv", "TSV (*.tsv, *.tab)", '\t', "text/tab-separated-values; charset=utf-8", ".tsv", ".tab")
}

func registerDelimited(key, label string, comma rune, contentType string, exts ...string) {
	core.Register(core.FormatDefinition{
		Key:         key,
		Label:       label,
		Extensions:  exts,
		ContentType: contentType,
		Decode: func(r io.Reader, opts core.DecodeOptions) (*table.Dataset, error) {
			return csv.Decode(r, csv.Options{Encoding: opts.Encoding, Comma: comma})
		},
		Encode: func(w io.Writer, ds *table.Dataset) error {
			return csv.EncodeWith(w, ds, comma)
		},
	})
}
