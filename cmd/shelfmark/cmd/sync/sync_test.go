package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark"
	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/sources"
)

type library struct{ records []catalog.Record }

func (l *library) Identity(context.Context) (int, error)   { return 1, nil }
func (l *library) Count(context.Context, int) (int, error) { return len(l.records), nil }
func (l *library) Page(_ context.Context, p sources.PageParams) ([]catalog.Record, error) {
	if p.Offset >= len(l.records) {
		return nil, nil
	}
	return l.records[p.Offset:min(p.Offset+p.Limit, len(l.records))], nil
}

func newApp(t *testing.T, vaultDir string) *application.Mock {
	t.Helper()
	statePath := filepath.Join(t.TempDir(), "state.db")
	lib := &library{records: []catalog.Record{{
		ItemID:   7,
		StatusID: catalog.StatusRead,
		Edition:  catalog.Source{Title: "Dune", ReleaseDate: "1965-08-01"},
	}}}
	return &application.Mock{
		VaultDirFunc:     func() string { return vaultDir },
		OutputFormatFunc: func() string { return "json" },
		OpenStateFunc:    func() (*state.Store, error) { return state.Open(statePath) },
		ClientFunc: func(store reconcile.Store, st shelfmark.StateStore) (shelfmark.Client, error) {
			return shelfmark.New(shelfmark.WithLibrary(lib), shelfmark.WithStore(store), shelfmark.WithStateStore(st))
		},
	}
}

func run(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncCommandWritesNotes(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, newApp(t, dir))
	require.NoError(t, err)

	var v view
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, 1, v.Fetched)
	assert.True(t, v.WatermarkAdvanced)
	assert.FileExists(t, filepath.Join(dir, "HardcoverBooks", "Dune (1965).md"))
}

func TestSyncCommandDryRunLeavesVaultUntouched(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, newApp(t, dir), "--dry-run")
	require.NoError(t, err)

	var v view
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.True(t, v.DryRun)
	assert.False(t, v.WatermarkAdvanced)
	assert.Positive(t, v.Created)

	_, statErr := os.Stat(filepath.Join(dir, "HardcoverBooks"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "HardcoverBooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "HardcoverBooks", "Mine.md"), []byte("---\nhardcoverBookId: 7\n---\nhand written\n"), 0o644))

	out, err := run(t, newApp(t, dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 notes failed")

	var v view
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Len(t, v.Failures, 1)
	assert.Equal(t, 7, v.Failures[0].ID)
	assert.False(t, v.WatermarkAdvanced)
}
