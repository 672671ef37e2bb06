package table

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
)

// MissingMarker is how RenderPreview shows a missing cell.
const MissingMarker = "NaN"

// RenderPreview renders the header and the first maxRows rows as a
// right-aligned text table with a row-position gutter. A negative maxRows
// renders every row. When rows are hidden a "[R rows x C columns]" trailer
// is appended. The dataset is never modified.
func (d *Dataset) RenderPreview(maxRows int) string {
	var b strings.Builder

	if len(d.cols) == 0 {
		return "Empty dataset\nColumns: []\nRows: 0\n"
	}
	if d.rows == 0 {
		fmt.Fprintf(&b, "Empty dataset\nColumns: [%s]\nRows: 0\n", strings.Join(d.ColumnNames(), ", "))
		return b.String()
	}

	shown := d.rows
	if maxRows >= 0 && maxRows < shown {
		shown = maxRows
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	tw.Write([]byte("\t"))
	for _, c := range d.cols {
		tw.Write([]byte(previewEscape(c.Name) + "\t"))
	}
	tw.Write([]byte("\n"))

	for r := 0; r < shown; r++ {
		tw.Write([]byte(strconv.Itoa(r) + "\t"))
		for _, c := range d.cols {
			v, ok := c.Display(r)
			if !ok {
				v = MissingMarker
			}
			tw.Write([]byte(previewEscape(v) + "\t"))
		}
		tw.Write([]byte("\n"))
	}
	tw.Flush()

	if shown < d.rows {
		fmt.Fprintf(&b, "\n[%d rows x %d columns]\n", d.rows, len(d.cols))
	}
	return b.String()
}

var previewReplacer = strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)

func previewEscape(s string) string {
	return previewReplacer.Replace(s)
}
