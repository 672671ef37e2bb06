// Package table holds the in-memory tabular dataset that the cleaning
// pipeline mutates.
//
// A Dataset is an ordered set of named columns of equal length. Every
// column has a declared FieldType and stores its cells as pgtype values;
// a cell with Valid=false is missing, whatever the column type. Row order
// is stable: no operation in this package reorders rows.
//
// A Dataset is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves (see core.Session).
package table

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType is the declared type of a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
)

// String returns the lowercase type name used in logs and API payloads.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// MarshalText lets FieldType render as its name in JSON.
func (t FieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses the names written by MarshalText.
func (t *FieldType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*t = FieldText
	case "numeric":
		*t = FieldNumeric
	default:
		return fmt.Errorf("unknown field type %q", b)
	}
	return nil
}

// Column is a named, typed vector of cells. Exactly one of text or num is
// in use, selected by Type.
type Column struct {
	Name string
	Type FieldType

	text []pgtype.Text
	num  []pgtype.Float8
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	if c.Type == FieldNumeric {
		return len(c.num)
	}
	return len(c.text)
}

// IsMissing reports whether cell i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.Type == FieldNumeric {
		return !c.num[i].Valid
	}
	return !c.text[i].Valid
}

// Text returns cell i of a text column. On a numeric column the number is
// formatted as text.
func (c *Column) Text(i int) pgtype.Text {
	if c.Type == FieldNumeric {
		n := c.num[i]
		if !n.Valid {
			return pgtype.Text{}
		}
		return pgtype.Text{String: FormatNumber(n.Float64), Valid: true}
	}
	return c.text[i]
}

// Float returns cell i of a numeric column. On a text column it is always
// missing; use CoerceColumnNumeric to convert.
func (c *Column) Float(i int) pgtype.Float8 {
	if c.Type == FieldNumeric {
		return c.num[i]
	}
	return pgtype.Float8{}
}

// Value returns cell i as a pgtype value suitable for pgx or database/sql.
func (c *Column) Value(i int) any {
	if c.Type == FieldNumeric {
		return c.num[i]
	}
	return c.text[i]
}

// Display returns the cell as text and whether it is present.
func (c *Column) Display(i int) (string, bool) {
	t := c.Text(i)
	return t.String, t.Valid
}

func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Type: c.Type}
	if c.text != nil {
		out.text = make([]pgtype.Text, len(c.text))
		copy(out.text, c.text)
	}
	if c.num != nil {
		out.num = make([]pgtype.Float8, len(c.num))
		copy(out.num, c.num)
	}
	return out
}

// compact keeps only the cells whose keep flag is set, in order.
func (c *Column) compact(keep []bool) {
	if c.Type == FieldNumeric {
		w := 0
		for i, v := range c.num {
			if keep[i] {
				c.num[w] = v
				w++
			}
		}
		c.num = c.num[:w]
		return
	}
	w := 0
	for i, v := range c.text {
		if keep[i] {
			c.text[w] = v
			w++
		}
	}
	// Zero the tail so dropped strings can be collected.
	clear(c.text[w:])
	c.text = c.text[:w]
}

// Row is a read-only view of one row, passed to FilterRows predicates.
type Row struct {
	ds  *Dataset
	idx int
}

// Index returns the row's current position.
func (r Row) Index() int { return r.idx }

// HasMissing reports whether any cell in the row is missing.
func (r Row) HasMissing() bool {
	for _, c := range r.ds.cols {
		if c.IsMissing(r.idx) {
			return true
		}
	}
	return false
}

// Value returns the named cell as text. ok is false when the cell is
// missing or the column does not exist.
func (r Row) Value(column string) (value string, ok bool) {
	c, found := r.ds.Column(column)
	if !found {
		return "", false
	}
	return c.Display(r.idx)
}
