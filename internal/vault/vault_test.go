package vault

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/errors"
)

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	v := New(afero.NewMemMapFs())

	require.NoError(t, v.EnsureFolder(ctx, "Books"))
	require.NoError(t, v.Create(ctx, "Books/a.md", "hello"))

	got, err := v.Read(ctx, "Books/a.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	err = v.Create(ctx, "Books/a.md", "again")
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestWriteRequiresExistingFile(t *testing.T) {
	ctx := context.Background()
	v := New(afero.NewMemMapFs())

	err := v.Write(ctx, "missing.md", "x")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, v.Create(ctx, "a.md", "long original content"))
	require.NoError(t, v.Write(ctx, "a.md", "short"))
	got, err := v.Read(ctx, "a.md")
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	v := New(afero.NewMemMapFs())
	require.NoError(t, v.Create(ctx, "a.md", "a"))
	require.NoError(t, v.Create(ctx, "b.md", "b"))

	err := v.Rename(ctx, "a.md", "b.md")
	assert.True(t, errors.IsAlreadyExists(err))

	require.NoError(t, v.Rename(ctx, "a.md", "c.md"))
	ok, err := v.Exists(ctx, "a.md")
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := v.Read(ctx, "c.md")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestListChildren(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	v := New(fs)

	for _, p := range []string{"Books/b.md", "Books/a.md", "Books/notes.txt", "Books/Sub/c.md"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}

	children, err := v.ListChildren(ctx, "Books/")
	require.NoError(t, err)
	assert.Equal(t, []string{"Books/a.md", "Books/b.md"}, children)

	none, err := v.ListChildren(ctx, "Missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDryRunLeavesDiskUntouched(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, afero.NewOsFs().MkdirAll(dir+"/Books", 0o755))
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), dir+"/Books/a.md", []byte("disk"), 0o644))

	v := DryRun(dir)
	require.NoError(t, v.EnsureFolder(ctx, "Books"))
	require.NoError(t, v.Write(ctx, "Books/a.md", "memory"))
	require.NoError(t, v.Create(ctx, "Books/b.md", "new"))

	got, err := v.Read(ctx, "Books/a.md")
	require.NoError(t, err)
	assert.Equal(t, "memory", got)

	onDisk, err := afero.ReadFile(afero.NewOsFs(), dir+"/Books/a.md")
	require.NoError(t, err)
	assert.Equal(t, "disk", string(onDisk))
	exists, err := afero.Exists(afero.NewOsFs(), dir+"/Books/b.md")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(afero.NewMemMapFs()).Read(ctx, "a.md")
	assert.ErrorIs(t, err, context.Canceled)
}
