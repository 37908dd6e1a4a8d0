// Package shelfmark keeps a folder of markdown notes in step with a remote
// reading library.
//
// A Client pages through the library, normalizes every record, and
// reconciles one note per book plus one note per author and series. Text
// written after a note's closing marker belongs to the user and survives
// every sync. Runs are incremental: only records changed since the stored
// watermark are fetched, and the watermark only advances when every note
// reconciled cleanly.
package shelfmark

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/agentstation/shelfmark/internal/sources/hardcover"
	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/settings"
	"github.com/agentstation/shelfmark/pkg/sync"
)

// Client synchronizes a reading library into a note store.
type Client interface {
	// Sync runs one sync. Per-note failures are reported in the Result;
	// transport and validation failures abort the run and return an error.
	Sync(ctx context.Context, opts ...SyncOption) (*Result, error)

	// Settings returns a copy of the settings snapshot in use.
	Settings() settings.Settings

	// OnNoteCreated registers a callback for created notes
	OnNoteCreated(NoteCreatedHook)

	// OnNoteUpdated registers a callback for notes rewritten in place
	OnNoteUpdated(NoteUpdatedHook)

	// OnNoteRenamed registers a callback for notes rewritten and moved
	OnNoteRenamed(NoteRenamedHook)

	// OnNoteFailed registers a callback for notes that failed to reconcile
	OnNoteFailed(NoteFailedHook)
}

// Types re-exported from pkg/sync and internal/state.
type (
	// SyncOption configures one Sync call.
	SyncOption = sync.Option
	// Result summarizes one Sync call.
	Result = sync.Result
	// Failure is one note that could not be reconciled.
	Failure = sync.Failure
	// Progress is a progress snapshot.
	Progress = sync.Progress
	// State is the bookkeeping persisted between runs.
	State = state.State
)

// Sync options re-exported for callers of the root package.
var (
	WithDryRun     = sync.WithDryRun
	WithFull       = sync.WithFull
	WithTimeout    = sync.WithTimeout
	WithDebugLimit = sync.WithDebugLimit
	WithProgress   = sync.WithProgress
)

// StateStore persists sync bookkeeping. *state.Store satisfies it.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// memoryState is the StateStore used when none is configured.
type memoryState struct {
	mu gosync.Mutex
	st State
}

func (m *memoryState) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *memoryState) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	return nil
}

// shelfmark is the internal implementation of the Client interface
type shelfmark struct {
	// one sync at a time
	mu     gosync.Mutex
	config *config

	// Event hooks
	hooks *hooks
}

// New creates a new Client with the given options
func New(opts ...Option) (Client, error) {
	c := &config{
		settings:  settings.Default(),
		now:       time.Now,
		pageDelay: constants.PageDelay,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	if err := c.settings.Normalize(); err != nil {
		return nil, err
	}
	if c.store == nil {
		return nil, errors.NewValidationError("store", nil, "a note store is required")
	}
	if c.state == nil {
		c.state = &memoryState{}
	}
	if c.pageDelay == nil {
		c.pageDelay = func(int) time.Duration { return 0 }
	}
	if c.library == nil {
		lib, err := hardcover.New(c.apiKey, c.settings, hardcover.WithEndpoint(c.endpoint))
		if err != nil {
			return nil, err
		}
		c.library = lib
	}

	return &shelfmark{config: c, hooks: newHooks()}, nil
}

// Settings returns a copy of the settings snapshot in use.
func (s *shelfmark) Settings() settings.Settings {
	return s.config.settings.Clone()
}

// OnNoteCreated registers a callback for created notes
func (s *shelfmark) OnNoteCreated(fn NoteCreatedHook) { s.hooks.OnNoteCreated(fn) }

// OnNoteUpdated registers a callback for notes rewritten in place
func (s *shelfmark) OnNoteUpdated(fn NoteUpdatedHook) { s.hooks.OnNoteUpdated(fn) }

// OnNoteRenamed registers a callback for notes rewritten and moved
func (s *shelfmark) OnNoteRenamed(fn NoteRenamedHook) { s.hooks.OnNoteRenamed(fn) }

// OnNoteFailed registers a callback for notes that failed to reconcile
func (s *shelfmark) OnNoteFailed(fn NoteFailedHook) { s.hooks.OnNoteFailed(fn) }
