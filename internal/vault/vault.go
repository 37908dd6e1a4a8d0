// Package vault implements the note store on top of an afero filesystem.
//
// Production code roots an OS filesystem at the vault directory; tests and
// dry runs use an in-memory filesystem or a copy-on-write overlay.
package vault

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
)

// Vault is a reconcile.Store over an afero filesystem.
type Vault struct {
	fs afero.Fs
}

// New returns a vault over fs. Paths passed to the vault are relative to
// the root of fs.
func New(fs afero.Fs) *Vault {
	return &Vault{fs: fs}
}

// Open returns a vault rooted at dir on the OS filesystem.
func Open(dir string) *Vault {
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// DryRun returns a vault that reads from dir but keeps every write in
// memory.
func DryRun(dir string) *Vault {
	base := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
	return New(afero.NewCopyOnWriteFs(base, afero.NewMemMapFs()))
}

// Fs exposes the underlying filesystem.
func (v *Vault) Fs() afero.Fs {
	return v.fs
}

func clean(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// Exists reports whether p exists.
func (v *Vault) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(v.fs, clean(p))
	if err != nil {
		return false, errors.WrapIO("stat", p, err)
	}
	return ok, nil
}

// Read returns the content of p.
func (v *Vault) Read(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := afero.ReadFile(v.fs, clean(p))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("note", p)
		}
		return "", errors.WrapIO("read", p, err)
	}
	return string(data), nil
}

// Write replaces the content of the existing file p.
func (v *Vault) Write(ctx context.Context, p, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := v.fs.OpenFile(clean(p), os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("note", p)
		}
		return errors.WrapIO("open", p, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", p, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", p, err)
	}
	return nil
}

// Create writes a new file at p and fails if p exists.
func (v *Vault) Create(ctx context.Context, p, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := v.fs.OpenFile(clean(p), os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.FilePermissions)
	if err != nil {
		if os.IsExist(err) {
			return errors.WrapResource("create", "note", p, errors.ErrAlreadyExists)
		}
		return errors.WrapIO("create", p, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", p, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", p, err)
	}
	return nil
}

// Rename moves from to to and fails if to exists.
func (v *Vault) Rename(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	taken, err := afero.Exists(v.fs, clean(to))
	if err != nil {
		return errors.WrapIO("stat", to, err)
	}
	if taken {
		return errors.WrapResource("rename", "note", to, errors.ErrAlreadyExists)
	}
	if err := v.fs.Rename(clean(from), clean(to)); err != nil {
		return errors.WrapIO("rename", from, err)
	}
	return nil
}

// ListChildren returns the markdown files directly inside folder, sorted
// by name. A missing folder has no children.
func (v *Vault) ListChildren(ctx context.Context, folder string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := clean(folder)
	infos, err := afero.ReadDir(v.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("list", folder, err)
	}
	var out []string
	for _, info := range infos {
		if info.IsDir() || !strings.EqualFold(path.Ext(info.Name()), ".md") {
			continue
		}
		out = append(out, path.Join(dir, info.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// EnsureFolder creates folder and any missing parents.
func (v *Vault) EnsureFolder(ctx context.Context, folder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// copy-on-write overlays refuse MkdirAll on a folder present in the base
	if ok, _ := afero.IsDir(v.fs, clean(folder)); ok {
		return nil
	}
	if err := v.fs.MkdirAll(clean(folder), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", folder, err)
	}
	return nil
}
