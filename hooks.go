package shelfmark

import (
	"sync"

	"github.com/agentstation/shelfmark/pkg/reconcile"
)

// Hook function types for note events
type (
	// NoteCreatedHook is called after a note is created
	NoteCreatedHook func(out reconcile.Outcome)

	// NoteUpdatedHook is called after a note is rewritten in place
	NoteUpdatedHook func(out reconcile.Outcome)

	// NoteRenamedHook is called after a note is rewritten and moved
	NoteRenamedHook func(out reconcile.Outcome)

	// NoteFailedHook is called when a note could not be reconciled
	NoteFailedHook func(f Failure)
)

// hooks manages event callbacks for note changes
type hooks struct {
	mu             sync.RWMutex
	onNoteCreated  []NoteCreatedHook
	onNoteUpdated  []NoteUpdatedHook
	onNoteRenamed  []NoteRenamedHook
	onNoteFailed   []NoteFailedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnNoteCreated registers a callback for created notes
func (h *hooks) OnNoteCreated(fn NoteCreatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNoteCreated = append(h.onNoteCreated, fn)
}

// OnNoteUpdated registers a callback for updated notes
func (h *hooks) OnNoteUpdated(fn NoteUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNoteUpdated = append(h.onNoteUpdated, fn)
}

// OnNoteRenamed registers a callback for renamed notes
func (h *hooks) OnNoteRenamed(fn NoteRenamedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNoteRenamed = append(h.onNoteRenamed, fn)
}

// OnNoteFailed registers a callback for notes that failed to reconcile
func (h *hooks) OnNoteFailed(fn NoteFailedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onNoteFailed = append(h.onNoteFailed, fn)
}

// triggerOutcome dispatches out to the hooks registered for its action
func (h *hooks) triggerOutcome(out reconcile.Outcome) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch out.Action {
	case reconcile.ActionCreated:
		for _, hook := range h.onNoteCreated {
			hook(out)
		}
	case reconcile.ActionUpdated:
		for _, hook := range h.onNoteUpdated {
			hook(out)
		}
	case reconcile.ActionRenamed:
		for _, hook := range h.onNoteRenamed {
			hook(out)
		}
	}
}

// triggerFailure dispatches f to the failure hooks
func (h *hooks) triggerFailure(f Failure) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, hook := range h.onNoteFailed {
		hook(f)
	}
}
