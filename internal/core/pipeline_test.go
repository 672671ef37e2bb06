package core

import (
	"context"
	"log/slog"
	"testing"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

func newDataset(t *testing.T, header []string, records ...[]string) *table.Dataset {
	t.Helper()
	ds, err := table.New(header, records, nil)
	if err != nil {
		t.Fatalf("table.New() error = %v", err)
	}
	return ds
}

// ageDataset is the id/age example with a padded value, an unparseable
// value, and a duplicate of the first row.
func ageDataset(t *testing.T) *table.Dataset {
	return newDataset(t, []string{"id", "age"},
		[]string{"1", "20"},
		[]string{"2", " 30 "},
		[]string{"3", "bad"},
		[]string{"1", "20"},
	)
}

func entriesFor(r *Report, step Step) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}

// ============================================================================
// End-to-end scenarios
// ============================================================================

func TestRun_CoerceThenDedupe(t *testing.T) {
	ds := ageDataset(t)
	cfg := CleaningConfig{
		CoerceNumeric:  CoerceStep{Enabled: true, Column: "age"},
		DropDuplicates: true,
	}

	report := NewPipeline().Run(context.Background(), ds, cfg)

	if ds.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", ds.RowCount())
	}
	col, _ := ds.Column("age")
	if col.Type != table.FieldNumeric {
		t.Fatalf("age type = %v, want numeric", col.Type)
	}
	want := []struct {
		valid bool
		v     float64
	}{{true, 20}, {true, 30}, {false, 0}}
	for i, w := range want {
		got := col.Float(i)
		if got.Valid != w.valid || (w.valid && got.Float64 != w.v) {
			t.Errorf("age[%d] = %+v, want %+v", i, got, w)
		}
	}

	warnings := report.Warnings()
	if len(warnings) != 1 || warnings[0].Column != "age" {
		t.Errorf("Warnings() = %+v, want one warning for age", warnings)
	}
	if got := report.RowsRemoved(StepDropDuplicates); got != 1 {
		t.Errorf("duplicate rows removed = %d, want 1", got)
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors: %+v", report.Errors())
	}
	if report.RowsBefore != 4 || report.RowsAfter != 3 {
		t.Errorf("rows before/after = %d/%d, want 4/3", report.RowsBefore, report.RowsAfter)
	}
}

func TestRun_ReplaceBeforeCoercion(t *testing.T) {
	// With coercion off the replacement sees the raw text column.
	ds := ageDataset(t)
	cfg := CleaningConfig{
		FindReplace: FindReplaceStep{Enabled: true, Find: "bad", Replace: "N/A"},
	}

	report := NewPipeline().Run(context.Background(), ds, cfg)

	if v, _ := ds.Cell(2, "age"); v != "N/A" {
		t.Errorf("age[2] = %q, want N/A", v)
	}
	for r, want := range []string{"20", " 30 ", "N/A", "20"} {
		if v, _ := ds.Cell(r, "age"); v != want {
			t.Errorf("age[%d] = %q, want %q", r, v, want)
		}
	}
	entries := entriesFor(report, StepFindReplace)
	if len(entries) != 1 || entries[0].Kind != KindSuccess || entries[0].Count != 1 {
		t.Errorf("find_replace entries = %+v", entries)
	}
}

func TestRun_DropMissingIgnoresLaterMissing(t *testing.T) {
	// Coercion runs after drop-missing, so the cell it empties stays.
	ds := ageDataset(t)

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		DropMissing:   true,
		CoerceNumeric: CoerceStep{Enabled: true, Column: "age"},
	})

	if ds.RowCount() != 4 {
		t.Errorf("RowCount() = %d, want 4", ds.RowCount())
	}
	if got := report.RowsRemoved(StepDropMissing); got != 0 {
		t.Errorf("drop_missing removed %d rows, want 0", got)
	}
	col, _ := ds.Column("age")
	if !col.IsMissing(2) {
		t.Error("age[2] should be missing after coercion")
	}
}

func TestRun_AllDisabled(t *testing.T) {
	ds := ageDataset(t)
	snapshot := ds.Clone()

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{})

	if len(report.Entries) != 0 {
		t.Errorf("Entries = %+v, want none", report.Entries)
	}
	if !ds.Equal(snapshot) {
		t.Error("dataset changed with every step disabled")
	}
}

// ============================================================================
// Per-step behavior
// ============================================================================

func TestRun_DropMissing(t *testing.T) {
	ds := newDataset(t, []string{"a", "b"},
		[]string{"1", "x"},
		[]string{"", "y"},
		[]string{"3", ""},
	)

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{DropMissing: true})

	if ds.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", ds.RowCount())
	}
	entries := entriesFor(report, StepDropMissing)
	if len(entries) != 1 || entries[0].Kind != KindRowsRemoved || entries[0].Count != 2 {
		t.Errorf("drop_missing entries = %+v", entries)
	}
	if entries[0].Message != "Removed 2 rows with missing values." {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestRun_CoerceCleanColumnHasNoWarning(t *testing.T) {
	ds := newDataset(t, []string{"n"}, []string{"1"}, []string{" 2.5 "}, []string{""})

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		CoerceNumeric: CoerceStep{Enabled: true, Column: "n"},
	})

	if len(report.Warnings()) != 0 {
		t.Errorf("Warnings() = %+v, want none", report.Warnings())
	}
	entries := entriesFor(report, StepCoerceNumeric)
	if len(entries) != 1 || entries[0].Kind != KindSuccess {
		t.Errorf("coerce entries = %+v, want one success", entries)
	}
}

func TestRun_CoerceUnknownColumn(t *testing.T) {
	ds := ageDataset(t)
	snapshot := ds.Clone()

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		CoerceNumeric:  CoerceStep{Enabled: true, Column: "Age"},
		DropDuplicates: true,
	})

	errs := report.Errors()
	if len(errs) != 1 {
		t.Fatalf("Errors() = %+v, want 1", errs)
	}
	if errs[0].Step != StepCoerceNumeric || errs[0].Column != "Age" || errs[0].Code != "VAL005" {
		t.Errorf("error entry = %+v", errs[0])
	}

	// The failed step leaves data as it was; the dedupe after it still runs.
	if got := report.RowsRemoved(StepDropDuplicates); got != 1 {
		t.Errorf("later step did not run: removed %d", got)
	}
	snapshot.DropDuplicateRows()
	if !ds.Equal(snapshot) {
		t.Error("failed coercion modified the dataset")
	}
}

func TestRun_CoerceBlankColumn(t *testing.T) {
	ds := ageDataset(t)
	snapshot := ds.Clone()

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		CoerceNumeric: CoerceStep{Enabled: true, Column: "   "},
	})

	cw := report.ConfigWarnings()
	if len(cw) != 1 || cw[0].Code != "CFG001" {
		t.Errorf("ConfigWarnings() = %+v, want CFG001", cw)
	}
	if report.HasErrors() {
		t.Error("blank column should not be an error")
	}
	if !ds.Equal(snapshot) {
		t.Error("dataset changed")
	}
}

func TestRun_FindReplaceIncomplete(t *testing.T) {
	tests := []struct {
		name          string
		find, replace string
	}{
		{"blank find", "", "x"},
		{"blank replace", "bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := ageDataset(t)
			snapshot := ds.Clone()

			report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
				FindReplace: FindReplaceStep{Enabled: true, Find: tt.find, Replace: tt.replace},
			})

			cw := report.ConfigWarnings()
			if len(cw) != 1 || cw[0].Step != StepFindReplace || cw[0].Code != "CFG002" {
				t.Errorf("ConfigWarnings() = %+v", cw)
			}
			if !ds.Equal(snapshot) {
				t.Error("dataset changed")
			}
		})
	}
}

func TestRun_FindReplaceEncodingFailure(t *testing.T) {
	ds := newDataset(t, []string{"a", "b"}, []string{"bad", "bad\xfe"})

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		FindReplace: FindReplaceStep{Enabled: true, Find: "bad", Replace: "ok"},
	})

	errs := report.Errors()
	if len(errs) != 1 || errs[0].Column != "b" || errs[0].Code != "FILE003" {
		t.Fatalf("Errors() = %+v", errs)
	}
	if v, _ := ds.Cell(0, "a"); v != "ok" {
		t.Errorf("earlier column should keep its replacement, got %q", v)
	}
}

func TestRun_StepOrder(t *testing.T) {
	ds := newDataset(t, []string{"a", "n"},
		[]string{"x", "1"},
		[]string{"", "2"},
		[]string{"x", "1"},
	)

	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		DropMissing:    true,
		CoerceNumeric:  CoerceStep{Enabled: true, Column: "n"},
		DropDuplicates: true,
		FindReplace:    FindReplaceStep{Enabled: true, Find: "x", Replace: "y"},
	})

	var order []Step
	for _, e := range report.Entries {
		if len(order) == 0 || order[len(order)-1] != e.Step {
			order = append(order, e.Step)
		}
	}
	want := []Step{StepDropMissing, StepCoerceNumeric, StepDropDuplicates, StepFindReplace}
	if len(order) != len(want) {
		t.Fatalf("step order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("step %d = %s, want %s", i, order[i], want[i])
		}
	}
	if ds.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", ds.RowCount())
	}
}

func TestRunStep_RecoversPanic(t *testing.T) {
	ds := newDataset(t, []string{"a"}, []string{"x"})
	boom := pipelineStep{
		step:    StepDropDuplicates,
		enabled: func(CleaningConfig) bool { return true },
		run:     func(*table.Dataset, CleaningConfig) []Entry { panic("boom") },
	}

	entries := runStep(slog.Default(), boom, ds, CleaningConfig{})
	if len(entries) != 1 || entries[0].Kind != KindError || entries[0].Step != StepDropDuplicates {
		t.Errorf("entries = %+v, want one error entry", entries)
	}
}

func TestReport_Lines(t *testing.T) {
	ds := ageDataset(t)
	report := NewPipeline().Run(context.Background(), ds, CleaningConfig{
		CoerceNumeric: CoerceStep{Enabled: true, Column: "age"},
	})

	lines := report.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() = %v", lines)
	}
	if lines[0] != "Warning: 1 values in column 'age' could not be converted and became missing." {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Column 'age' converted to numeric." {
		t.Errorf("line 1 = %q", lines[1])
	}
}
