package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/shelfmark"
	"github.com/agentstation/shelfmark/internal/state"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/settings"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	ClientFunc       func(store reconcile.Store, st shelfmark.StateStore) (shelfmark.Client, error)
	SettingsFunc     func() settings.Settings
	VaultDirFunc     func() string
	OpenStateFunc    func() (*state.Store, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Client returns a client using the mock function or an error.
func (m *Mock) Client(store reconcile.Store, st shelfmark.StateStore) (shelfmark.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(store, st)
	}
	return nil, errors.New("mock: no client configured")
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() settings.Settings {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return settings.Default()
}

// VaultDir returns the vault using the mock function or ".".
func (m *Mock) VaultDir() string {
	if m.VaultDirFunc != nil {
		return m.VaultDirFunc()
	}
	return "."
}

// OpenState opens state using the mock function or an error.
func (m *Mock) OpenState() (*state.Store, error) {
	if m.OpenStateFunc != nil {
		return m.OpenStateFunc()
	}
	return nil, errors.New("mock: no state configured")
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
