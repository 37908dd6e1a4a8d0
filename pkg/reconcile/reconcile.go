// Package reconcile merges freshly rendered notes into the documents already
// present in a store.
//
// A note is located by the identifier property in its header, never by its
// file name, so renaming a note by hand or changing the filename template is
// safe. On update the header and the machine-owned body are regenerated while
// the text before the start marker and everything after the end marker are
// carried over unchanged. Grouped notes additionally keep the personal
// sub-zone of every member block.
package reconcile

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/document"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/logging"
	"github.com/agentstation/shelfmark/pkg/metadata"
	"github.com/agentstation/shelfmark/pkg/render"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Store is the document store the engine reads and writes. Paths are
// slash-separated and relative to the store root. Every method acts on a
// single document.
type Store interface {
	// Exists reports whether a document or folder is present at p.
	Exists(ctx context.Context, p string) (bool, error)
	// Read returns the content of the document at p.
	Read(ctx context.Context, p string) (string, error)
	// Write replaces the content of the existing document at p.
	Write(ctx context.Context, p, content string) error
	// Create writes a new document and fails if p is taken.
	Create(ctx context.Context, p, content string) error
	// Rename moves a document and fails if to is taken.
	Rename(ctx context.Context, from, to string) error
	// ListChildren returns the direct markdown children of folder,
	// sorted by name.
	ListChildren(ctx context.Context, folder string) ([]string, error)
	// EnsureFolder creates folder and its parents.
	EnsureFolder(ctx context.Context, folder string) error
}

// Action describes what happened to a document.
type Action string

// Actions.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRenamed Action = "renamed"
)

// Outcome reports the result of reconciling one note.
type Outcome struct {
	Action       Action
	Kind         metadata.Kind
	ID           int
	Path         string
	PreviousPath string
}

// Engine reconciles notes against a store. An engine belongs to one sync
// run: it caches the identifier index of every folder it has scanned.
type Engine struct {
	store    Store
	settings settings.Settings
	renderer *render.Renderer
	now      func() time.Time
	full     bool

	index map[string]map[int]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for group timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFullSync marks the run as a full sync. Stale group members are only
// pruned on full syncs, and only when the settings ask for it.
func WithFullSync(full bool) Option {
	return func(e *Engine) {
		e.full = full
	}
}

// New returns an engine writing to store with settings s.
func New(store Store, s settings.Settings, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		settings: s,
		renderer: render.New(s),
		now:      time.Now,
		index:    make(map[string]map[int]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) timestamp() string {
	return e.now().UTC().Format(constants.TimestampFormat)
}

func (e *Engine) pruning() bool {
	return e.full && e.settings.Group.PruneMissing
}

// locate returns the path of the first direct child of folder whose header
// carries prop with value id.
func (e *Engine) locate(ctx context.Context, folder, prop string, id int) (string, bool, error) {
	idx, err := e.folderIndex(ctx, folder, prop)
	if err != nil {
		return "", false, err
	}
	p, ok := idx[id]
	return p, ok, nil
}

func (e *Engine) folderIndex(ctx context.Context, folder, prop string) (map[int]string, error) {
	cacheKey := folder + "\x00" + prop
	if idx, ok := e.index[cacheKey]; ok {
		return idx, nil
	}

	children, err := e.store.ListChildren(ctx, folder)
	if err != nil {
		return nil, err
	}
	idx := make(map[int]string, len(children))
	for _, child := range children {
		content, err := e.store.Read(ctx, child)
		if err != nil {
			return nil, err
		}
		parsed, err := document.Parse(content)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("path", child).Msg("Skipping unparsable note")
			continue
		}
		id, ok := parsed.Header.Int(prop)
		if !ok {
			continue
		}
		if _, seen := idx[id]; !seen {
			idx[id] = child
		}
	}
	e.index[cacheKey] = idx
	return idx, nil
}

func (e *Engine) remember(folder, prop string, id int, p string) {
	if idx, ok := e.index[folder+"\x00"+prop]; ok {
		idx[id] = p
	}
}

// placement returns the path for a new note with identifier id. When want
// is held by a document without that identifier, the id is appended to the
// file name.
func (e *Engine) placement(ctx context.Context, want string, id int) (string, error) {
	taken, err := e.store.Exists(ctx, want)
	if err != nil {
		return "", err
	}
	if !taken {
		return want, nil
	}
	alt := disambiguate(want, id)
	taken, err = e.store.Exists(ctx, alt)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errors.WrapResource("create", "note", alt, errors.ErrAlreadyExists)
	}
	logging.Ctx(ctx).Info().
		Str("path", want).
		Str("target", alt).
		Msg("Note name already in use, adding the identifier")
	return alt, nil
}

// disambiguate turns "Folder/Name.md" into "Folder/Name (id).md".
func disambiguate(p string, id int) string {
	return strings.TrimSuffix(p, ".md") + " (" + strconv.Itoa(id) + ").md"
}

// create writes a new document at p.
func (e *Engine) create(ctx context.Context, folder, prop string, id int, p, content string) error {
	if err := e.store.EnsureFolder(ctx, folder); err != nil {
		return err
	}
	if err := e.store.Create(ctx, p, content); err != nil {
		return err
	}
	e.remember(folder, prop, id, p)
	return nil
}

// commit writes content to current and then moves it to want. The rename
// is skipped when want is taken by another document.
func (e *Engine) commit(ctx context.Context, folder, prop string, id int, current, want, content string) (Outcome, error) {
	if err := e.store.Write(ctx, current, content); err != nil {
		return Outcome{}, err
	}
	if current == want {
		return Outcome{Action: ActionUpdated, Path: current}, nil
	}

	taken, err := e.store.Exists(ctx, want)
	if err != nil {
		return Outcome{}, err
	}
	if taken {
		if current == disambiguate(want, id) {
			return Outcome{Action: ActionUpdated, Path: current}, nil
		}
		logging.Ctx(ctx).Warn().
			Str("path", current).
			Str("target", want).
			Msg("Rename target already exists, keeping current name")
		return Outcome{Action: ActionUpdated, Path: current}, nil
	}
	if err := e.store.Rename(ctx, current, want); err != nil {
		return Outcome{}, err
	}
	e.remember(folder, prop, id, want)
	return Outcome{Action: ActionRenamed, Path: want, PreviousPath: current}, nil
}

// parseExisting reads and tokenizes the document at p. A document without
// an end marker cannot be merged safely. Unless endOnly is set, the start
// marker is required too.
func (e *Engine) parseExisting(ctx context.Context, p string, endOnly bool) (*document.Parsed, error) {
	content, err := e.store.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	parsed, err := document.Parse(content)
	if err != nil {
		return nil, err
	}
	if !parsed.HasBody && !(endOnly && parsed.HasEnd) {
		return nil, errors.NewParseError("document", p,
			fmt.Sprintf("content markers %s and %s not found", document.ContentStart, document.ContentEnd), nil)
	}
	return parsed, nil
}

func failure(kind metadata.Kind, id int, p string, err error) error {
	return &errors.ReconcileError{Kind: string(kind), ID: id, Path: p, Err: err}
}

func joinPath(folder, name string) string {
	return path.Join(folder, name)
}
