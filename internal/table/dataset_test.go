package table

import (
	"errors"
	"reflect"
	"testing"
)

// mustNew builds a dataset or fails the test.
func mustNew(t *testing.T, header []string, records ...[]string) *Dataset {
	t.Helper()
	ds, err := New(header, records, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return ds
}

// ----------------------------------------------------------------------------
// Construction
// ----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	ds := mustNew(t, []string{"id", "name"},
		[]string{"1", "alice"},
		[]string{"2", ""},
		[]string{"3"},
	)

	if ds.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", ds.RowCount())
	}
	if got := ds.ColumnNames(); !reflect.DeepEqual(got, []string{"id", "name"}) {
		t.Errorf("ColumnNames() = %v", got)
	}
	if v, ok := ds.Cell(0, "name"); !ok || v != "alice" {
		t.Errorf("Cell(0, name) = %q, %v", v, ok)
	}
	if _, ok := ds.Cell(1, "name"); ok {
		t.Error("empty cell should load as missing")
	}
	if _, ok := ds.Cell(2, "name"); ok {
		t.Error("short record should be padded with missing")
	}
	c, _ := ds.Column("id")
	if c.Type != FieldText {
		t.Errorf("loaded column type = %v, want text", c.Type)
	}
}

func TestNew_CustomMissing(t *testing.T) {
	isNA := func(s string) bool { return s == "" || s == "NA" }
	ds, err := New([]string{"a"}, [][]string{{"NA"}, {"x"}}, isNA)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := ds.Cell(0, "a"); ok {
		t.Error("NA should be missing")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		records [][]string
		wantErr error
	}{
		{"no header", nil, nil, ErrNoColumns},
		{"duplicate column", []string{"a", "a"}, nil, ErrDuplicateColumn},
		{"ragged row", []string{"a"}, [][]string{{"1", "2"}}, ErrRaggedRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.header, tt.records, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Clone / Equal
// ----------------------------------------------------------------------------

func TestClone_IsIndependent(t *testing.T) {
	orig := mustNew(t, []string{"id", "age"},
		[]string{"1", "20"},
		[]string{"2", "x"},
	)
	work := orig.Clone()

	if !work.Equal(orig) {
		t.Fatal("clone should equal original")
	}

	if _, err := work.CoerceColumnNumeric("age"); err != nil {
		t.Fatalf("CoerceColumnNumeric() error = %v", err)
	}
	work.ReplaceInTextColumns("1", "one")
	work.DropMissing()

	if orig.RowCount() != 2 {
		t.Errorf("original RowCount() = %d, want 2", orig.RowCount())
	}
	if v, _ := orig.Cell(0, "id"); v != "1" {
		t.Errorf("original cell mutated: %q", v)
	}
	c, _ := orig.Column("age")
	if c.Type != FieldText {
		t.Error("original column type changed")
	}
	if work.Equal(orig) {
		t.Error("mutated clone should differ from original")
	}
}

func TestEqual(t *testing.T) {
	a := mustNew(t, []string{"x"}, []string{"1"}, []string{""})
	b := mustNew(t, []string{"x"}, []string{"1"}, []string{""})
	c := mustNew(t, []string{"y"}, []string{"1"}, []string{""})
	d := mustNew(t, []string{"x"}, []string{"1"}, []string{"2"})

	if !a.Equal(b) {
		t.Error("identical datasets should be equal")
	}
	if a.Equal(c) {
		t.Error("different column names should not be equal")
	}
	if a.Equal(d) {
		t.Error("missing vs present should not be equal")
	}
}

func TestRecords(t *testing.T) {
	ds := mustNew(t, []string{"id", "age"},
		[]string{"1", " 30 "},
		[]string{"2", "bad"},
	)
	ds.CoerceColumnNumeric("age")

	header, rows := ds.Records()
	if !reflect.DeepEqual(header, []string{"id", "age"}) {
		t.Errorf("header = %v", header)
	}
	want := [][]string{{"1", "30"}, {"2", ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %v, want %v", rows, want)
	}
}

func TestRowValues(t *testing.T) {
	ds := mustNew(t, []string{"id", "age"}, []string{"1", "20"})
	ds.CoerceColumnNumeric("age")

	vals := ds.RowValues(0)
	if len(vals) != 2 {
		t.Fatalf("len(RowValues) = %d, want 2", len(vals))
	}
	c, _ := ds.Column("age")
	if got := c.Float(0); !got.Valid || got.Float64 != 20 {
		t.Errorf("age = %+v, want 20", got)
	}
}

func TestFieldType_TextRoundTrip(t *testing.T) {
	for _, ft := range []FieldType{FieldText, FieldNumeric} {
		b, err := ft.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", ft, err)
		}
		var got FieldType
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", b, err)
		}
		if got != ft {
			t.Errorf("round trip of %v = %v", ft, got)
		}
	}

	var ft FieldType
	if err := ft.UnmarshalText([]byte("date")); err == nil {
		t.Error("UnmarshalText(date) should fail")
	}
}
