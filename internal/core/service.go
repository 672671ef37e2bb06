package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/CleanCSV/internal/logging"
	"github.com/JonMunkholm/CleanCSV/internal/table"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrTooManySessions    = errors.New("too many sessions")
	ErrFileTooLarge       = errors.New("file too large")
	ErrNoFile             = errors.New("no file provided")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrStoreNotConfigured = errors.New("store not configured")
	ErrInvalidTableName   = errors.New("invalid table name")
)

// FileError is an I/O failure while loading or saving a file. The session
// that was current before the failure is left as it was.
type FileError struct {
	Op   string // "load" or "save"
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// RunRecord is one cleaning run as written to the run log.
type RunRecord struct {
	SessionID string
	FileName  string
	Client    ClientInfo
	Config    CleaningConfig
	Report    *Report
}

// Store is an optional database sink for run logs and dataset exports.
type Store interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	ExportTable(ctx context.Context, name string, ds *table.Dataset) (int64, error)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	MaxFileSize        int64
	MaxSessions        int
	SessionTTL         time.Duration
	PreviewRows        int
	MaxConcurrentLoads int
	LoadWait           time.Duration
	DefaultEncoding    string
}

// DefaultPreviewRows is the preview length used when none is configured.
const DefaultPreviewRows = 15

// Service is the entry point for the presentation shell. It owns the
// session registry and routes every operation to the right session.
type Service struct {
	opts     Options
	pipeline *Pipeline
	limiter  *LoadLimiter
	store    Store

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a service. store may be nil, in which case runs are
// not logged and ExportToStore fails with ErrStoreNotConfigured.
func NewService(opts Options, store Store) *Service {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &Service{
		opts:     opts,
		pipeline: NewPipeline(),
		limiter:  NewLoadLimiter(opts.MaxConcurrentLoads, opts.LoadWait),
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// HasStore reports whether a database sink is configured.
func (s *Service) HasStore() bool { return s.store != nil }

// PreviewRows returns the default preview length.
func (s *Service) PreviewRows() int { return s.opts.PreviewRows }

// LoadRequest describes a file to load into a new session.
type LoadRequest struct {
	FileName string
	Format   string // explicit format key; empty selects by extension
	Encoding string
	Sheet    string
	Replace  string // session to close once the load succeeds
	Body     io.Reader
}

// Load decodes a file into a new session. On failure no session is created
// and the session named by Replace is kept.
func (s *Service) Load(ctx context.Context, req LoadRequest) (*Session, error) {
	if req.Body == nil || req.FileName == "" {
		return nil, ErrNoFile
	}

	def, err := resolveFormat(req.Format, req.FileName)
	if err != nil {
		return nil, &FileError{Op: "load", File: req.FileName, Err: err}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	body := req.Body
	if s.opts.MaxFileSize > 0 {
		body = &sizeLimitReader{r: body, max: s.opts.MaxFileSize}
	}
	encoding := req.Encoding
	if encoding == "" {
		encoding = s.opts.DefaultEncoding
	}

	start := time.Now()
	ds, err := def.Decode(body, DecodeOptions{Encoding: encoding, Sheet: req.Sheet})
	if err != nil {
		return nil, &FileError{Op: "load", File: req.FileName, Err: err}
	}

	sess := NewSession(uuid.New().String(), req.FileName, def.Key, ds)

	s.mu.Lock()
	_, replacing := s.sessions[req.Replace]
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions && !replacing {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.ID] = sess
	if replacing {
		delete(s.sessions, req.Replace)
	}
	s.mu.Unlock()

	logging.WithFields(ctx, "session_id", sess.ID).Info("file loaded",
		"file", req.FileName,
		"format", def.Key,
		"rows", ds.RowCount(),
		"columns", ds.ColumnCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return sess, nil
}

// Session looks up a session by ID.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Clean runs the pipeline on a session's working copy. A run log failure
// is logged and does not affect the returned report.
func (s *Service) Clean(ctx context.Context, id string, cfg CleaningConfig) (*Report, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	report := sess.Clean(logging.ContextWithFields(ctx, "session_id", id), s.pipeline, cfg)

	if s.store != nil {
		rec := RunRecord{
			SessionID: id,
			FileName:  sess.FileName,
			Client:    ClientFromContext(ctx),
			Config:    cfg,
			Report:    report,
		}
		if err := s.store.RecordRun(ctx, rec); err != nil {
			logging.WithFields(ctx, "session_id", id, "run_id", report.RunID).
				Warn("failed to record cleaning run", "error", err)
		}
	}
	return report, nil
}

// Reset restores a session's working copy to the loaded original.
func (s *Service) Reset(id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	sess.Reset()
	return nil
}

// Preview renders a session's working copy. maxRows == 0 selects the
// configured default; a negative value renders every row.
func (s *Service) Preview(id string, maxRows int) (string, error) {
	sess, err := s.Session(id)
	if err != nil {
		return "", err
	}
	if maxRows == 0 {
		maxRows = s.opts.PreviewRows
	}
	return sess.Preview(maxRows), nil
}

// Export encodes a session's working copy in the given format.
func (s *Service) Export(ctx context.Context, id, format string, w io.Writer) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	def, ok := Get(format)
	if !ok {
		return &FileError{Op: "save", File: sess.FileName, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}

	err = sess.View(func(ds *table.Dataset) error {
		return def.Encode(w, ds)
	})
	if err != nil {
		return &FileError{Op: "save", File: sess.FileName, Err: err}
	}

	logging.WithFields(ctx, "session_id", id).Info("dataset exported", "format", def.Key)
	return nil
}

var tableNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// ValidTableName reports whether name can be used as an export table name.
func ValidTableName(name string) bool {
	return tableNameRegex.MatchString(name)
}

// ExportToStore writes a session's working copy to a new table in the
// configured store and returns the number of rows written.
func (s *Service) ExportToStore(ctx context.Context, id, tableName string) (int64, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if !ValidTableName(tableName) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTableName, tableName)
	}
	sess, err := s.Session(id)
	if err != nil {
		return 0, err
	}

	n, err := s.store.ExportTable(ctx, tableName, sess.Snapshot())
	if err != nil {
		return 0, fmt.Errorf("export to table %s: %w", tableName, err)
	}

	logging.WithFields(ctx, "session_id", id).Info("dataset exported to store",
		"table", tableName,
		"rows", n,
	)
	return n, nil
}

// Close drops a session.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// List returns summaries of all sessions, oldest first.
func (s *Service) List() []SessionSummary {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	out := make([]SessionSummary, len(sessions))
	for i, sess := range sessions {
		out[i] = sess.Summary()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LoadedAt.Before(out[j].LoadedAt)
	})
	return out
}

// Formats lists the registered file formats.
func (s *Service) Formats() []FormatDefinition { return All() }

// LoaderStatus returns the load limiter state.
func (s *Service) LoaderStatus() LoadLimiterStatus { return s.limiter.Status() }

// WaitForLoads blocks until in-flight loads finish or ctx is done.
func (s *Service) WaitForLoads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// sizeLimitReader fails with ErrFileTooLarge once more than max bytes
// have been read.
type sizeLimitReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, l.max)
	}
	return n, err
}
