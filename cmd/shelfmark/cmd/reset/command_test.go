package reset

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/state"
)

func TestResetCommandClearsWatermark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := state.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(state.State{AccountID: 42, RecordCount: 3, Watermark: "2025-03-04T05:06:07.000Z"}))
	require.NoError(t, st.Close())

	app := &application.Mock{OpenStateFunc: func() (*state.Store, error) { return state.Open(path) }}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "full")

	st, err = state.Open(path)
	require.NoError(t, err)
	defer st.Close()
	got, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Watermark)
	assert.Zero(t, got.AccountID)
	assert.Equal(t, 3, got.RecordCount)
}
