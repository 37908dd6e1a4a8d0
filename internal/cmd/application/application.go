// Package application provides the application interface for shelfmark commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with a Mock:
//
//	mock := &application.Mock{
//	    SettingsFunc: func() settings.Settings { return settings.Default() },
//	}
//	cmd := config.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/shelfmark"
	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Application provides what commands need from the running app.
type Application interface {
	// Client builds a sync client writing through store and recording
	// bookkeeping in st.
	Client(store reconcile.Store, st shelfmark.StateStore) (shelfmark.Client, error)

	// Settings returns the effective settings snapshot.
	Settings() settings.Settings

	// VaultDir returns the root of the note vault.
	VaultDir() string

	// OpenState opens the persisted sync state. Callers close it.
	OpenState() (*state.Store, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
