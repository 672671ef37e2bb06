package core

import (
	"fmt"
	"time"
)

// Step identifies one cleaning step in a report.
type Step string

const (
	StepDropMissing    Step = "drop_missing"
	StepCoerceNumeric  Step = "coerce_numeric"
	StepDropDuplicates Step = "drop_duplicates"
	StepFindReplace    Step = "find_replace"
)

// EntryKind classifies a report entry.
type EntryKind string

const (
	KindRowsRemoved   EntryKind = "rows_removed"
	KindSuccess       EntryKind = "success"
	KindWarning       EntryKind = "warning"
	KindConfigWarning EntryKind = "config_warning"
	KindError         EntryKind = "error"
)

// Entry is one line of a cleaning report.
type Entry struct {
	Step    Step      `json:"step"`
	Kind    EntryKind `json:"kind"`
	Message string    `json:"message"`
	Column  string    `json:"column,omitempty"`
	Count   int       `json:"count"`
	Code    string    `json:"code,omitempty"`

	// Err is the underlying failure for KindError entries.
	Err error `json:"-"`
}

// Report is the ordered outcome of a pipeline run. It is informational
// only: nothing in it stops later steps from running.
type Report struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	RowsBefore int           `json:"rows_before"`
	RowsAfter  int           `json:"rows_after"`
	Entries    []Entry       `json:"entries"`
}

func (r *Report) add(e Entry) {
	r.Entries = append(r.Entries, e)
}

func (r *Report) filter(kind EntryKind) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns coercion warnings.
func (r *Report) Warnings() []Entry { return r.filter(KindWarning) }

// ConfigWarnings returns steps that were skipped for incomplete settings.
func (r *Report) ConfigWarnings() []Entry { return r.filter(KindConfigWarning) }

// Errors returns step-level failures.
func (r *Report) Errors() []Entry { return r.filter(KindError) }

// HasErrors reports whether any step failed.
func (r *Report) HasErrors() bool { return len(r.Errors()) > 0 }

// RowsRemoved returns the row delta recorded for step, or 0 if the step
// did not run.
func (r *Report) RowsRemoved(step Step) int {
	for _, e := range r.Entries {
		if e.Step == step && e.Kind == KindRowsRemoved {
			return e.Count
		}
	}
	return 0
}

// Lines renders the report as activity-log lines.
func (r *Report) Lines() []string {
	lines := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		switch e.Kind {
		case KindWarning, KindConfigWarning:
			lines[i] = fmt.Sprintf("Warning: %s", e.Message)
		case KindError:
			lines[i] = fmt.Sprintf("Error: %s (Code: %s)", e.Message, e.Code)
		default:
			lines[i] = e.Message
		}
	}
	return lines
}
