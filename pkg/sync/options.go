// Package sync provides options and results for a single library sync run.
package sync

import (
	"time"

	"github.com/agentstation/shelfmark/pkg/errors"
)

// Options controls one Shelfmark.Sync run.
type Options struct {
	// Orchestration control
	DryRun  bool          // Reconcile into an in-memory overlay; no notes or sync state are written
	Full    bool          // Ignore the stored watermark for this run
	Timeout time.Duration // Timeout for the entire sync operation

	// DebugLimit caps the number of records processed; 0 means no cap.
	DebugLimit int

	// Progress receives phase and item counts as the run advances.
	Progress func(Progress)
}

// Apply applies the given options to the sync options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		DryRun:     false,
		Full:       false,
		Timeout:    0,
		DebugLimit: 0,
	}
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Validate checks if the sync options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if s.DebugLimit < 0 {
		return &errors.ValidationError{
			Field:   "DebugLimit",
			Value:   s.DebugLimit,
			Message: "debug limit must be non-negative",
		}
	}
	return nil
}

// Report sends p to the progress callback, if any.
func (s *Options) Report(p Progress) {
	if s.Progress != nil {
		s.Progress(p)
	}
}

// WithDryRun configures dry run mode. Notes are reconciled against an
// in-memory overlay of the store and sync state is left untouched.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithFull configures whether to ignore the stored watermark.
func WithFull(full bool) Option {
	return func(opts *Options) {
		opts.Full = full
	}
}

// WithTimeout configures the sync timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithDebugLimit caps the number of records a run processes.
func WithDebugLimit(n int) Option {
	return func(opts *Options) {
		opts.DebugLimit = n
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn func(Progress)) Option {
	return func(opts *Options) {
		opts.Progress = fn
	}
}
