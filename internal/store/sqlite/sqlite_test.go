package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/store"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRun(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	rec := core.RunRecord{
		SessionID: "s1",
		FileName:  "people.csv",
		Client:    core.ClientInfo{IPAddress: "127.0.0.1:9000"},
		Config:    core.CleaningConfig{DropMissing: true},
		Report: &core.Report{
			RunID:      "0b5f8a3e-6f0e-4a8e-9d43-2a8f6c3b1d10",
			StartedAt:  time.Now(),
			RowsBefore: 3,
			RowsAfter:  2,
			Entries: []core.Entry{
				{Step: core.StepDropMissing, Kind: core.KindRowsRemoved, Message: "Removed 1 rows with missing values.", Count: 1},
			},
		},
	}
	if err := s.RecordRun(ctx, rec); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	var file, ip string
	var after int
	err := s.db.QueryRowContext(ctx,
		`SELECT file_name, ip_address, rows_after FROM cleaning_runs WHERE id = ?`, rec.Report.RunID,
	).Scan(&file, &ip, &after)
	if err != nil {
		t.Fatal(err)
	}
	if file != "people.csv" || ip != "127.0.0.1" || after != 2 {
		t.Errorf("run row = %s %s %d", file, ip, after)
	}

	var msg string
	var code sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT message, code FROM cleaning_run_entries WHERE run_id = ? AND position = 0`, rec.Report.RunID,
	).Scan(&msg, &code)
	if err != nil {
		t.Fatal(err)
	}
	if msg != "Removed 1 rows with missing values." || code.Valid {
		t.Errorf("entry = %q %+v", msg, code)
	}
}

func TestExportTable(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	ds, err := table.New([]string{"name", "age"}, [][]string{{"ada", "36"}, {"", "x"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ds.CoerceColumnNumeric("age"); err != nil {
		t.Fatal(err)
	}

	n, err := s.ExportTable(ctx, "people", ds)
	if err != nil {
		t.Fatalf("ExportTable() error = %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	var name sql.NullString
	var age sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT name, age FROM people WHERE age = 36`).Scan(&name, &age); err != nil {
		t.Fatal(err)
	}
	if name.String != "ada" || age.Float64 != 36 {
		t.Errorf("row = %+v %+v", name, age)
	}

	var nulls int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people WHERE name IS NULL AND age IS NULL`).Scan(&nulls); err != nil {
		t.Fatal(err)
	}
	if nulls != 1 {
		t.Errorf("missing row count = %d, want 1", nulls)
	}

	if _, err := s.ExportTable(ctx, "people", ds); err == nil {
		t.Error("second export to the same table should fail")
	}
}

func TestExportTable_CaseOnlyDuplicateNames(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	ds, err := table.New([]string{"a", "A"}, [][]string{{"lower", "upper"}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.ExportTable(ctx, "mixed", ds); err != nil {
		t.Fatalf("ExportTable() error = %v", err)
	}

	var lower, upper string
	if err := s.db.QueryRowContext(ctx, `SELECT "a", "A.1" FROM mixed`).Scan(&lower, &upper); err != nil {
		t.Fatal(err)
	}
	if lower != "lower" || upper != "upper" {
		t.Errorf("row = %q %q", lower, upper)
	}
}

func TestInsertSQL(t *testing.T) {
	got := InsertSQL("t", []store.ColumnDef{{Name: "a"}, {Name: `b"c`}})
	want := `INSERT INTO "t" ("a", "b""c") VALUES (?, ?)`
	if got != want {
		t.Errorf("InsertSQL() = %s, want %s", got, want)
	}
}
