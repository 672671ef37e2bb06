package core

import (
	"context"
	"sync"
	"time"

	"github.com/JonMunkholm/CleanCSV/internal/table"
)

// Session owns one loaded dataset: an original snapshot that is never
// mutated, and a working copy the pipeline transforms. All access to the
// working copy goes through the session's mutex, so two cleaning runs on
// the same session never overlap.
type Session struct {
	ID       string
	FileName string
	Format   string
	LoadedAt time.Time

	mu       sync.Mutex
	original *table.Dataset
	working  *table.Dataset
	reports  []*Report
	lastUsed time.Time
}

// ColumnInfo describes one column of the working dataset.
type ColumnInfo struct {
	Name string          `json:"name"`
	Type table.FieldType `json:"type"`
}

// SessionSummary is a point-in-time description of a session.
type SessionSummary struct {
	ID           string       `json:"id"`
	FileName     string       `json:"file_name"`
	Format       string       `json:"format"`
	LoadedAt     time.Time    `json:"loaded_at"`
	OriginalRows int          `json:"original_rows"`
	Rows         int          `json:"rows"`
	Columns      []ColumnInfo `json:"columns"`
	Modified     bool         `json:"modified"`
	Runs         int          `json:"runs"`
	LastReport   *Report      `json:"last_report,omitempty"`
}

// NewSession takes ownership of ds as the original snapshot and starts the
// working copy as an independent clone of it.
func NewSession(id, fileName, format string, ds *table.Dataset) *Session {
	now := time.Now()
	return &Session{
		ID:       id,
		FileName: fileName,
		Format:   format,
		LoadedAt: now,
		original: ds,
		working:  ds.Clone(),
		lastUsed: now,
	}
}

// Clean runs the pipeline against the working copy.
func (s *Session) Clean(ctx context.Context, p *Pipeline, cfg CleaningConfig) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	report := p.Run(ctx, s.working, cfg)
	s.reports = append(s.reports, report)
	return report
}

// Reset discards every change by replacing the working copy with a fresh
// clone of the original.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	s.working = s.original.Clone()
	s.reports = nil
}

// Preview renders the first maxRows rows of the working copy.
func (s *Session) Preview(maxRows int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return s.working.RenderPreview(maxRows)
}

// View calls fn with the working copy while holding the session lock.
// fn must not retain ds or mutate it.
func (s *Session) View(fn func(ds *table.Dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return fn(s.working)
}

// Snapshot returns an independent copy of the working dataset, for
// operations that should not hold the session lock while they run.
func (s *Session) Snapshot() *table.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = time.Now()
	return s.working.Clone()
}

// Original returns a copy of the dataset as it was loaded.
func (s *Session) Original() *table.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original.Clone()
}

// Reports returns the reports of every run since load or the last reset.
func (s *Session) Reports() []*Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Summary describes the session's current state.
func (s *Session) Summary() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := s.working.Columns()
	info := make([]ColumnInfo, len(cols))
	for i, c := range cols {
		info[i] = ColumnInfo{Name: c.Name, Type: c.Type}
	}

	sum := SessionSummary{
		ID:           s.ID,
		FileName:     s.FileName,
		Format:       s.Format,
		LoadedAt:     s.LoadedAt,
		OriginalRows: s.original.RowCount(),
		Rows:         s.working.RowCount(),
		Columns:      info,
		Modified:     !s.working.Equal(s.original),
		Runs:         len(s.reports),
	}
	if n := len(s.reports); n > 0 {
		sum.LastReport = s.reports[n-1]
	}
	return sum
}

// idleSince returns when the session was last used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
