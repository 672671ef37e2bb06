// Package postgres writes the cleaning run log and exported datasets to
// PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/CleanCSV/internal/core"
	"github.com/JonMunkholm/CleanCSV/internal/store"
	"github.com/JonMunkholm/CleanCSV/internal/table"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cleaning_runs (
		id          UUID PRIMARY KEY,
		session_id  TEXT NOT NULL,
		file_name   TEXT NOT NULL,
		ip_address  INET,
		user_agent  TEXT,
		config      JSONB NOT NULL,
		rows_before INTEGER NOT NULL,
		rows_after  INTEGER NOT NULL,
		warnings    INTEGER NOT NULL,
		errors      INTEGER NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cleaning_run_entries (
		run_id   UUID NOT NULL REFERENCES cleaning_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		step     TEXT NOT NULL,
		kind     TEXT NOT NULL,
		message  TEXT NOT NULL,
		col      TEXT,
		count    INTEGER NOT NULL,
		code     TEXT,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS cleaning_runs_session_idx ON cleaning_runs (session_id, started_at)`,
}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens and pings a pool.
func Connect(ctx context.Context, dsn string, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = int32(pc.MaxConns)
	}
	if pc.MinConns > 0 {
		cfg.MinConns = int32(pc.MinConns)
	}
	if pc.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pc.MaxConnLifetime
	}
	if pc.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pc.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Store implements core.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the run-log tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RecordRun writes the run and its report entries in one transaction.
func (s *Store) RecordRun(ctx context.Context, rec core.RunRecord) error {
	row, err := store.Flatten(rec)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	runID := pgtype.UUID{Bytes: id, Valid: true}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO cleaning_runs
			(id, session_id, file_name, ip_address, user_agent, config,
			 rows_before, rows_after, warnings, errors, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		runID, row.SessionID, row.FileName, row.IPAddress, optText(row.UserAgent), row.ConfigJSON,
		row.RowsBefore, row.RowsAfter, row.Warnings, row.Errors,
		pgtype.Timestamptz{Time: rec.Report.StartedAt, Valid: true}, row.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(rec.Report.Entries) > 0 {
		batch := &pgx.Batch{}
		for i, e := range rec.Report.Entries {
			batch.Queue(`
				INSERT INTO cleaning_run_entries (run_id, position, step, kind, message, col, count, code)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				runID, i, string(e.Step), string(e.Kind), e.Message, optText(e.Column), e.Count, optText(e.Code),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ExportTable creates a new table named name and bulk-copies ds into it.
// It fails if the table already exists.
func (s *Store) ExportTable(ctx context.Context, name string, ds *table.Dataset) (int64, error) {
	cols := store.Columns(ds)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, CreateTableSQL(name, cols)); err != nil {
		return 0, err
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, names,
		pgx.CopyFromSlice(ds.RowCount(), func(i int) ([]any, error) {
			return ds.RowValues(i), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateTableSQL builds the DDL for an export table. Numeric columns map to
// double precision, everything else to text.
func CreateTableSQL(name string, cols []store.ColumnDef) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(pgx.Identifier{name}.Sanitize())
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		if c.Numeric {
			b.WriteString(" DOUBLE PRECISION")
		} else {
			b.WriteString(" TEXT")
		}
	}
	b.WriteString(")")
	return b.String()
}

func optText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
