package core

// pipeline.go runs the four cleaning steps against a working dataset.
//
// Each step reports its outcome as report entries instead of returning an
// error. A failing step never prevents the steps after it from running, and
// the pipeline itself has no failure path: Run always returns a report.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/CleanCSV/internal/logging"
	"github.com/JonMunkholm/CleanCSV/internal/table"
	"github.com/google/uuid"
)

var (
	ErrNoColumnSelected       = errors.New("no column selected for numeric conversion")
	ErrFindReplaceRequired    = errors.New("find and replace text required")
	ErrValuesCoercedToMissing = errors.New("values coerced to missing")
)

type pipelineStep struct {
	step    Step
	enabled func(CleaningConfig) bool
	run     func(*table.Dataset, CleaningConfig) []Entry
}

// steps is the fixed execution order.
var steps = []pipelineStep{
	{
		step:    StepDropMissing,
		enabled: func(c CleaningConfig) bool { return c.DropMissing },
		run:     runDropMissing,
	},
	{
		step:    StepCoerceNumeric,
		enabled: func(c CleaningConfig) bool { return c.CoerceNumeric.Enabled },
		run:     runCoerceNumeric,
	},
	{
		step:    StepDropDuplicates,
		enabled: func(c CleaningConfig) bool { return c.DropDuplicates },
		run:     runDropDuplicates,
	},
	{
		step:    StepFindReplace,
		enabled: func(c CleaningConfig) bool { return c.FindReplace.Enabled },
		run:     runFindReplace,
	},
}

// Pipeline applies a CleaningConfig to a dataset.
type Pipeline struct {
	now func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{now: time.Now}
}

// Run mutates ds in place according to cfg and returns the report. The
// caller must hold exclusive access to ds for the duration of the call.
// ctx only carries logging fields; a run is not cancellable.
func (p *Pipeline) Run(ctx context.Context, ds *table.Dataset, cfg CleaningConfig) *Report {
	cfg = cfg.Normalize()
	start := p.now()

	report := &Report{
		RunID:      uuid.New().String(),
		StartedAt:  start,
		RowsBefore: ds.RowCount(),
		Entries:    []Entry{},
	}
	logger := logging.WithFields(ctx, "run_id", report.RunID)

	for _, s := range steps {
		if !s.enabled(cfg) {
			continue
		}
		entries := runStep(logger, s, ds, cfg)
		for _, e := range entries {
			report.add(e)
		}
		logger.Debug("cleaning step finished",
			"step", s.step,
			"entries", len(entries),
			"rows", ds.RowCount(),
		)
	}

	report.RowsAfter = ds.RowCount()
	report.Duration = p.now().Sub(start)

	logger.Info("cleaning run completed",
		"rows_before", report.RowsBefore,
		"rows_after", report.RowsAfter,
		"warnings", len(report.Warnings()),
		"errors", len(report.Errors()),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report
}

// runStep isolates a step so a panic becomes an error entry for that step.
func runStep(logger *slog.Logger, s pipelineStep, ds *table.Dataset, cfg CleaningConfig) (entries []Entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in cleaning step", "step", s.step, "panic", r)
			err := fmt.Errorf("%s: unexpected failure: %v", s.step, r)
			entries = append(entries, errorEntry(s.step, "", "Step failed", err))
		}
	}()
	return s.run(ds, cfg)
}

func errorEntry(step Step, column, prefix string, err error) Entry {
	return Entry{
		Step:    step,
		Kind:    KindError,
		Message: fmt.Sprintf("%s: %v", prefix, err),
		Column:  column,
		Code:    MapError(err).Code,
		Err:     err,
	}
}

func configWarning(step Step, err error) Entry {
	msg := MapError(err)
	return Entry{
		Step:    step,
		Kind:    KindConfigWarning,
		Message: msg.Message + ". " + msg.Action,
		Code:    msg.Code,
	}
}

func runDropMissing(ds *table.Dataset, _ CleaningConfig) []Entry {
	before, after := ds.DropMissing()
	return []Entry{{
		Step:    StepDropMissing,
		Kind:    KindRowsRemoved,
		Message: fmt.Sprintf("Removed %d rows with missing values.", before-after),
		Count:   before - after,
	}}
}

func runCoerceNumeric(ds *table.Dataset, cfg CleaningConfig) []Entry {
	column := cfg.CoerceNumeric.Column
	if column == "" {
		return []Entry{configWarning(StepCoerceNumeric, ErrNoColumnSelected)}
	}

	newlyMissing, err := ds.CoerceColumnNumeric(column)
	if err != nil {
		prefix := fmt.Sprintf("Error converting column '%s'", column)
		return []Entry{errorEntry(StepCoerceNumeric, column, prefix, err)}
	}

	var entries []Entry
	if newlyMissing > 0 {
		entries = append(entries, Entry{
			Step:    StepCoerceNumeric,
			Kind:    KindWarning,
			Message: fmt.Sprintf("%d values in column '%s' could not be converted and became missing.", newlyMissing, column),
			Column:  column,
			Count:   newlyMissing,
			Code:    MapError(ErrValuesCoercedToMissing).Code,
		})
	}
	entries = append(entries, Entry{
		Step:    StepCoerceNumeric,
		Kind:    KindSuccess,
		Message: fmt.Sprintf("Column '%s' converted to numeric.", column),
		Column:  column,
	})
	return entries
}

func runDropDuplicates(ds *table.Dataset, _ CleaningConfig) []Entry {
	before, after := ds.DropDuplicateRows()
	return []Entry{{
		Step:    StepDropDuplicates,
		Kind:    KindRowsRemoved,
		Message: fmt.Sprintf("Removed %d duplicate rows.", before-after),
		Count:   before - after,
	}}
}

func runFindReplace(ds *table.Dataset, cfg CleaningConfig) []Entry {
	find, replace := cfg.FindReplace.Find, cfg.FindReplace.Replace
	if find == "" || replace == "" {
		return []Entry{configWarning(StepFindReplace, ErrFindReplaceRequired)}
	}

	n, err := ds.ReplaceInTextColumns(find, replace)
	if errors.Is(err, table.ErrInvalidArguments) {
		return []Entry{configWarning(StepFindReplace, ErrFindReplaceRequired)}
	}
	if err != nil {
		var column string
		var ce *table.ColumnError
		if errors.As(err, &ce) {
			column = ce.Column
		}
		return []Entry{errorEntry(StepFindReplace, column, "Error replacing text", err)}
	}

	return []Entry{{
		Step:    StepFindReplace,
		Kind:    KindSuccess,
		Message: fmt.Sprintf("Replaced '%s' with '%s' in all text columns.", find, replace),
		Count:   n,
	}}
}
