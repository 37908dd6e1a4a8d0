package reconcile

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/agentstation/shelfmark/pkg/errors"
)

// Overlay is a Store that reads through to a base store and keeps every
// change in memory. The base store is never written.
type Overlay struct {
	base    Store
	files   map[string]string
	removed map[string]bool
	folders map[string]bool
}

var _ Store = (*Overlay)(nil)

// NewOverlay returns an overlay over base.
func NewOverlay(base Store) *Overlay {
	return &Overlay{
		base:    base,
		files:   make(map[string]string),
		removed: make(map[string]bool),
		folders: make(map[string]bool),
	}
}

// Exists reports whether p exists in the overlay or, unless removed, in
// the base store.
func (o *Overlay) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := o.files[p]; ok {
		return true, nil
	}
	if o.removed[p] {
		return false, nil
	}
	if o.folders[p] {
		return true, nil
	}
	return o.base.Exists(ctx, p)
}

// Read returns the overlay content of p, falling back to the base store.
func (o *Overlay) Read(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if content, ok := o.files[p]; ok {
		return content, nil
	}
	if o.removed[p] {
		return "", errors.NewNotFoundError("note", p)
	}
	return o.base.Read(ctx, p)
}

// Write records new content for the existing document p.
func (o *Overlay) Write(ctx context.Context, p, content string) error {
	ok, err := o.Exists(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFoundError("note", p)
	}
	o.files[p] = content
	return nil
}

// Create records a new document and fails if p is taken.
func (o *Overlay) Create(ctx context.Context, p, content string) error {
	ok, err := o.Exists(ctx, p)
	if err != nil {
		return err
	}
	if ok {
		return errors.WrapResource("create", "note", p, errors.ErrAlreadyExists)
	}
	o.files[p] = content
	delete(o.removed, p)
	return nil
}

// Rename records a move and fails if to is taken.
func (o *Overlay) Rename(ctx context.Context, from, to string) error {
	taken, err := o.Exists(ctx, to)
	if err != nil {
		return err
	}
	if taken {
		return errors.WrapResource("rename", "note", to, errors.ErrAlreadyExists)
	}
	content, err := o.Read(ctx, from)
	if err != nil {
		return err
	}
	o.files[to] = content
	delete(o.removed, to)
	delete(o.files, from)
	o.removed[from] = true
	return nil
}

// ListChildren merges the base listing with overlay changes.
func (o *Overlay) ListChildren(ctx context.Context, folder string) ([]string, error) {
	children, err := o.base.ListChildren(ctx, folder)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(children))
	var out []string
	for _, c := range children {
		if o.removed[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	dir := path.Clean(folder)
	for p := range o.files {
		if seen[p] || path.Dir(p) != dir || !strings.EqualFold(path.Ext(p), ".md") {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// EnsureFolder records folder as present.
func (o *Overlay) EnsureFolder(ctx context.Context, folder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.folders[folder] = true
	return nil
}
