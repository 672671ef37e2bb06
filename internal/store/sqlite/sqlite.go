// Package sqlite writes the cleaning run log and exported datasets to a
// local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/store"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cleaning_runs (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		file_name   TEXT NOT NULL,
		ip_address  TEXT,
		user_agent  TEXT,
		config      TEXT NOT NULL,
		rows_before INTEGER NOT NULL,
		rows_after  INTEGER NOT NULL,
		warnings    INTEGER NOT NULL,
		errors      INTEGER NOT NULL,
		started_at  INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cleaning_run_entries (
		run_id   TEXT NOT NULL REFERENCES cleaning_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		step     TEXT NOT NULL,
		kind     TEXT NOT NULL,
		message  TEXT NOT NULL,
		col      TEXT,
		count    INTEGER NOT NULL,
		code     TEXT,
		PRIMARY KEY (run_id, position)
	)`,
}

// Store implements core.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ core.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the
// run-log schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps a :memory: database alive across calls.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun writes the run and its report entries in one transaction.
func (s *Store) RecordRun(ctx context.Context, rec core.RunRecord) error {
	row, err := store.Flatten(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var ip sql.NullString
	if row.IPAddress != nil {
		ip = sql.NullString{String: row.IPAddress.String(), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cleaning_runs
			(id, session_id, file_name, ip_address, user_agent, config,
			 rows_before, rows_after, warnings, errors, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.SessionID, row.FileName, ip, nullString(row.UserAgent), string(row.ConfigJSON),
		row.RowsBefore, row.RowsAfter, row.Warnings, row.Errors, row.StartedAt, row.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cleaning_run_entries (run_id, position, step, kind, message, col, count, code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range rec.Report.Entries {
		_, err := stmt.ExecContext(ctx, row.ID, i, string(e.Step), string(e.Kind), e.Message,
			nullString(e.Column), e.Count, nullString(e.Code))
		if err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ExportTable creates a new table named name and inserts every row of ds.
func (s *Store) ExportTable(ctx context.Context, name string, ds *table.Dataset) (int64, error) {
	// SQLite compares identifiers case-insensitively.
	cols := store.FoldUnique(store.Columns(ds))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, CreateTableSQL(name, cols)); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, InsertSQL(name, cols))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	all := ds.Columns()
	args := make([]any, len(all))
	for r := 0; r < ds.RowCount(); r++ {
		for c, col := range all {
			args[c] = cellArg(col, r)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", r+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(ds.RowCount()), nil
}

// CreateTableSQL builds the DDL for an export table.
func CreateTableSQL(name string, cols []store.ColumnDef) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		typ := "TEXT"
		if c.Numeric {
			typ = "REAL"
		}
		defs[i] = quoteIdent(c.Name) + " " + typ
	}
	return "CREATE TABLE " + quoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}

// InsertSQL builds a positional insert for every column.
func InsertSQL(name string, cols []store.ColumnDef) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
	}
	return "INSERT INTO " + quoteIdent(name) + " (" + strings.Join(names, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func cellArg(c *table.Column, r int) any {
	switch {
	case c.IsMissing(r):
		return nil
	case c.Type == table.FieldNumeric:
		return c.Float(r).Float64
	default:
		return c.Text(r).String
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
