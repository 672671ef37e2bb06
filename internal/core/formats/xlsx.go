package formats

import (
	"io"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/table"
	"github.com/JonMunkholm/CleanCSV/internal/xlsx"
)

func init() {
	core.Register(core.FormatDefinition{
		Key:         "xlsx",
		Label:       "Excel (*.xlsx)",
		Extensions:  []string{".xlsx", ".xlsm"},
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Decode: func(r io.Reader, opts core.DecodeOptions) (*table.Dataset, error) {
			return xlsx.Decode(r, xlsx.Options{Sheet: opts.Sheet})
		},
		Encode: xlsx.Encode,
	})
}
