package table

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Dataset is an ordered collection of equal-length named columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a text-typed dataset from a header and raw records.
//
// isMissing decides which raw cell values load as missing; nil treats only
// the empty string as missing. Records shorter than the header are padded
// with missing cells. A record longer than the header fails with
// ErrRaggedRow.
func New(header []string, records [][]string, isMissing func(string) bool) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}
	if isMissing == nil {
		isMissing = func(s string) bool { return s == "" }
	}

	ds := &Dataset{
		cols:  make([]*Column, len(header)),
		index: make(map[string]int, len(header)),
		rows:  len(records),
	}

	for i, name := range header {
		if _, dup := ds.index[name]; dup {
			return nil, &ColumnError{Op: "load", Column: name, Err: ErrDuplicateColumn}
		}
		ds.index[name] = i
		ds.cols[i] = &Column{
			Name: name,
			Type: FieldText,
			text: make([]pgtype.Text, len(records)),
		}
	}

	for r, rec := range records {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("record %d has %d fields, header has %d: %w",
				r+1, len(rec), len(header), ErrRaggedRow)
		}
		for c, v := range rec {
			if isMissing(v) {
				continue
			}
			ds.cols[c].text[r] = pgtype.Text{String: v, Valid: true}
		}
	}

	return ds, nil
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return d.rows }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.cols) }

// ColumnNames returns the column names in load order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in load order. The returned columns are
// owned by the dataset and must be treated as read-only.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Cell returns the display text of one cell and whether it is present.
func (d *Dataset) Cell(row int, column string) (string, bool) {
	c, ok := d.Column(column)
	if !ok || row < 0 || row >= d.rows {
		return "", false
	}
	return c.Display(row)
}

// Clone returns a deep copy that shares no backing storage with d.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		cols:  make([]*Column, len(d.cols)),
		index: make(map[string]int, len(d.index)),
		rows:  d.rows,
	}
	for i, c := range d.cols {
		out.cols[i] = c.clone()
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}

// Equal reports whether two datasets have the same columns, types, and cells.
func (d *Dataset) Equal(other *Dataset) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.rows != other.rows || len(d.cols) != len(other.cols) {
		return false
	}
	for i, c := range d.cols {
		o := other.cols[i]
		if c.Name != o.Name || c.Type != o.Type {
			return false
		}
		for r := 0; r < d.rows; r++ {
			if !cellEqual(c, o, r) {
				return false
			}
		}
	}
	return true
}

func cellEqual(a, b *Column, r int) bool {
	if a.IsMissing(r) || b.IsMissing(r) {
		return a.IsMissing(r) == b.IsMissing(r)
	}
	if a.Type == FieldNumeric {
		return a.num[r].Float64 == b.num[r].Float64
	}
	return a.text[r].String == b.text[r].String
}

// Records returns the header and every row as text, with missing cells
// rendered as the empty string.
func (d *Dataset) Records() (header []string, rows [][]string) {
	header = d.ColumnNames()
	rows = make([][]string, d.rows)
	for r := range rows {
		rec := make([]string, len(d.cols))
		for c, col := range d.cols {
			rec[c], _ = col.Display(r)
		}
		rows[r] = rec
	}
	return header, rows
}

// RowValues returns row r as pgtype values in column order.
func (d *Dataset) RowValues(r int) []any {
	vals := make([]any, len(d.cols))
	for c, col := range d.cols {
		vals[c] = col.Value(r)
	}
	return vals
}
