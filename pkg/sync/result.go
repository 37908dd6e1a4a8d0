package sync

import (
	"fmt"
	"strings"
	"time"
)

// Phase names a step of a sync run.
type Phase string

// Sync phases in the order a run passes through them.
const (
	PhaseIdentity  Phase = "identity"
	PhaseCount     Phase = "count"
	PhaseFetch     Phase = "fetch"
	PhaseReconcile Phase = "reconcile"
	PhaseFinalize  Phase = "finalize"
)

// Progress is a snapshot of run progress. Each record counts twice against
// Total: once when fetched and once when reconciled.
type Progress struct {
	Phase     Phase
	Completed int
	Total     int
}

// Percent returns completion in the range 0..100.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	pct := p.Completed * 100 / p.Total
	if pct > 100 {
		return 100
	}
	return pct
}

// Failure records one document that could not be reconciled.
type Failure struct {
	Kind string // "book", "author", "series"
	ID   int
	Name string
	Err  error
}

// Error implements the error interface
func (f Failure) Error() string {
	return fmt.Sprintf("%s %d (%s): %v", f.Kind, f.ID, f.Name, f.Err)
}

// Result represents the complete result of a sync operation.
type Result struct {
	// Document outcomes
	Created  int
	Updated  int
	Renamed  int
	Failed   int
	Failures []Failure

	// Fetch statistics
	Fetched int // Records fetched from the library
	Total   int // Records the run set out to process

	// Operation metadata
	RunID    string
	Debug    bool // Whether a debug limit capped the run
	DryRun   bool // Whether this was a dry run
	Full     bool // Whether the watermark was ignored
	Duration time.Duration

	// Watermark bookkeeping
	WatermarkAdvanced bool
	Watermark         string // Watermark in effect after the run
}

// HasFailures returns true if any document failed to reconcile.
func (sr *Result) HasFailures() bool {
	return sr.Failed > 0
}

// HasChanges returns true if any document was created, updated or renamed.
func (sr *Result) HasChanges() bool {
	return sr.Created+sr.Updated+sr.Renamed > 0
}

// Summary returns a human-readable summary of the sync result.
func (sr *Result) Summary() string {
	var parts []string
	if sr.DryRun {
		parts = append(parts, "(Dry run)")
	}
	if sr.Debug {
		parts = append(parts, "(Debug limit)")
	}
	if sr.Full {
		parts = append(parts, "(Full sync)")
	}

	var summary string
	switch {
	case sr.Fetched == 0:
		summary = "No changed records"
	case sr.HasFailures():
		summary = fmt.Sprintf("Synced %d records: %d created, %d updated, %d renamed, %d failed",
			sr.Fetched, sr.Created, sr.Updated, sr.Renamed, sr.Failed)
	default:
		summary = fmt.Sprintf("Synced %d records: %d created, %d updated, %d renamed",
			sr.Fetched, sr.Created, sr.Updated, sr.Renamed)
	}
	if len(parts) > 0 {
		summary += " " + strings.Join(parts, " ")
	}
	return summary
}
