package table

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

// FilterRows removes every row for which keep returns false and returns the
// number of rows removed. Surviving rows keep their relative order.
func (d *Dataset) FilterRows(keep func(Row) bool) int {
	mask := make([]bool, d.rows)
	kept := 0
	for i := range mask {
		if keep(Row{ds: d, idx: i}) {
			mask[i] = true
			kept++
		}
	}

	removed := d.rows - kept
	if removed == 0 {
		return 0
	}
	for _, c := range d.cols {
		c.compact(mask)
	}
	d.rows = kept
	return removed
}

// DropMissing removes every row that has at least one missing cell.
func (d *Dataset) DropMissing() (before, after int) {
	before = d.rows
	d.FilterRows(func(r Row) bool { return !r.HasMissing() })
	return before, d.rows
}

// DropDuplicateRows removes rows that equal an earlier row in every column.
// Two missing cells compare equal. The first occurrence is kept.
func (d *Dataset) DropDuplicateRows() (before, after int) {
	before = d.rows
	seen := make(map[string]struct{}, d.rows)
	var b strings.Builder
	d.FilterRows(func(r Row) bool {
		b.Reset()
		d.writeRowKey(&b, r.idx)
		key := b.String()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return before, d.rows
}

// writeRowKey encodes a row so that equal rows produce equal keys. Text
// cells are length-prefixed so no separator can collide with cell content.
func (d *Dataset) writeRowKey(b *strings.Builder, r int) {
	for _, c := range d.cols {
		if c.IsMissing(r) {
			b.WriteByte('-')
			continue
		}
		if c.Type == FieldNumeric {
			b.WriteByte('n')
			b.WriteString(FormatNumber(c.num[r].Float64))
			b.WriteByte(';')
			continue
		}
		s := c.text[r].String
		b.WriteByte('t')
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
}

// CoerceColumnNumeric converts the named column to FieldNumeric. Each cell
// is trimmed and parsed; cells that do not parse become missing.
//
// newlyMissing counts cells that were present before and missing after.
// Cells that were already missing are not counted. Coercing a column that
// is already numeric changes nothing. An unknown column returns a
// *ColumnError wrapping ErrColumnNotFound and leaves the dataset unchanged.
func (d *Dataset) CoerceColumnNumeric(name string) (newlyMissing int, err error) {
	c, ok := d.Column(name)
	if !ok {
		return 0, &ColumnError{Op: "coerce", Column: name, Err: ErrColumnNotFound}
	}
	if c.Type == FieldNumeric {
		return 0, nil
	}

	num := make([]pgtype.Float8, len(c.text))
	for i, t := range c.text {
		if !t.Valid {
			continue
		}
		num[i] = ToPgFloat8(t.String)
		if !num[i].Valid {
			newlyMissing++
		}
	}

	c.Type = FieldNumeric
	c.num = num
	c.text = nil
	return newlyMissing, nil
}

// ReplaceInTextColumns replaces every literal occurrence of find with
// replace in every present cell of every text column, and returns the
// number of cells changed. Numeric columns and missing cells are skipped.
//
// Both arguments must be non-empty, otherwise ErrInvalidArguments is
// returned and nothing changes. A column holding a cell that is not valid
// UTF-8 fails with ErrUnsupportedEncoding; that column is left as it was,
// while columns processed before it keep their replacements.
func (d *Dataset) ReplaceInTextColumns(find, replace string) (replaced int, err error) {
	if find == "" || replace == "" {
		return 0, ErrInvalidArguments
	}

	for _, c := range d.cols {
		if c.Type != FieldText {
			continue
		}
		for _, t := range c.text {
			if t.Valid && !utf8.ValidString(t.String) {
				return replaced, &ColumnError{Op: "replace", Column: c.Name, Err: ErrUnsupportedEncoding}
			}
		}
		for i, t := range c.text {
			if !t.Valid || !strings.Contains(t.String, find) {
				continue
			}
			c.text[i].String = strings.ReplaceAll(t.String, find, replace)
			replaced++
		}
	}
	return replaced, nil
}
