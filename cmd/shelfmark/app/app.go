// Package app provides the application context and dependency management
// for the shelfmark CLI. It centralizes configuration, logging and the
// construction of sync clients.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/shelfmark"
	"github.com/agentstation/shelfmark/internal/cmd/application"
	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// App represents the shelfmark application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Open state databases, closed on Shutdown
	mu     sync.Mutex
	states []*state.Store
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration loaded from the environment,
// .env files and the config file; options may replace it.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.config == nil {
		config, err := LoadConfig()
		if err != nil {
			return nil, errors.WrapResource("load", "config", "", err)
		}
		app.config = config
	}

	if app.logger == nil {
		logger := NewLogger(app.config)
		app.logger = &logger
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns a copy of the effective settings snapshot.
func (a *App) Settings() settings.Settings {
	return a.config.Settings.Clone()
}

// VaultDir returns the root of the note vault.
func (a *App) VaultDir() string {
	return a.config.VaultDir
}

// OpenState opens the state database. It is closed by the caller or, at the
// latest, by Shutdown.
func (a *App) OpenState() (*state.Store, error) {
	st, err := state.Open(a.config.StatePath)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.states = append(a.states, st)
	a.mu.Unlock()
	return st, nil
}

// Client builds a sync client from the app configuration.
func (a *App) Client(store reconcile.Store, st shelfmark.StateStore) (shelfmark.Client, error) {
	opts := []shelfmark.Option{
		shelfmark.WithSettings(a.config.Settings),
		shelfmark.WithStore(store),
		shelfmark.WithStateStore(st),
		shelfmark.WithAPIKey(a.config.APIKey),
	}
	if a.config.Endpoint != "" {
		opts = append(opts, shelfmark.WithEndpoint(a.config.Endpoint))
	}

	client, err := shelfmark.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "shelfmark", "", err)
	}
	return client, nil
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	states := a.states
	a.states = nil
	a.mu.Unlock()

	var first error
	for _, st := range states {
		if err := st.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
