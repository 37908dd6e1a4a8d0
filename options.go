package shelfmark

import (
	"time"

	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/reconcile"
	"github.com/agentstation/shelfmark/pkg/settings"
	"github.com/agentstation/shelfmark/pkg/sources"
)

// config holds the collaborators and settings of a Shelfmark instance
type config struct {
	settings  settings.Settings
	library   sources.Library
	store     reconcile.Store
	state     StateStore
	apiKey    string
	endpoint  string
	now       func() time.Time
	pageDelay func(total int) time.Duration
}

// Option is a function that configures a Shelfmark instance
type Option func(*config) error

// WithSettings sets the settings snapshot used by every sync. The snapshot
// is normalized and validated when the instance is created.
func WithSettings(s settings.Settings) Option {
	return func(c *config) error {
		c.settings = s.Clone()
		return nil
	}
}

// WithLibrary sets the library source. Without one, a Hardcover client is
// built from the API key.
func WithLibrary(l sources.Library) Option {
	return func(c *config) error {
		c.library = l
		return nil
	}
}

// WithAPIKey sets the Hardcover API key. A leading "Bearer " is accepted.
func WithAPIKey(key string) Option {
	return func(c *config) error {
		c.apiKey = key
		return nil
	}
}

// WithEndpoint overrides the Hardcover GraphQL endpoint.
func WithEndpoint(url string) Option {
	return func(c *config) error {
		c.endpoint = url
		return nil
	}
}

// WithStore sets the note store. Required.
func WithStore(store reconcile.Store) Option {
	return func(c *config) error {
		if store == nil {
			return errors.NewValidationError("store", nil, "store cannot be nil")
		}
		c.store = store
		return nil
	}
}

// WithStateStore sets where sync bookkeeping is persisted. Without one,
// state lives in memory for the lifetime of the instance.
func WithStateStore(s StateStore) Option {
	return func(c *config) error {
		c.state = s
		return nil
	}
}

// WithClock sets the clock used for watermarks and note timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithPageDelay replaces the pause between page fetches.
func WithPageDelay(fn func(total int) time.Duration) Option {
	return func(c *config) error {
		c.pageDelay = fn
		return nil
	}
}
