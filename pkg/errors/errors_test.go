package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/shelfmark/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "book", ID: "42"}
		assert.Equal(t, "book with ID 42 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("failed"), pkgerrors.NewNotFoundError("series", "7"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("targetFolder", "/", "target folder cannot be the vault root")
		assert.Equal(t, "validation failed for field targetFolder: target folder cannot be the vault root", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestAPIError(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("hardcover", 429, "too many requests")
		assert.Equal(t, "API error from hardcover (status 429): too many requests", err.Error())
		assert.True(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("graphql error without status", func(t *testing.T) {
		err := pkgerrors.NewAPIError("hardcover", 0, "field 'foo' not found")
		assert.Equal(t, "API error from hardcover: field 'foo' not found", err.Error())
		assert.False(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("hardcover", 503, "down")
		assert.True(t, errors.Is(err, pkgerrors.ErrUnavailable))
	})
}

func TestAuthenticationError(t *testing.T) {
	base := errors.New("401")
	err := pkgerrors.NewAuthenticationError("hardcover", "bearer", "invalid API key", base)
	assert.Equal(t, "authentication error for hardcover (bearer): invalid API key", err.Error())
	assert.True(t, pkgerrors.IsAPIKeyError(err))
	assert.Equal(t, base, errors.Unwrap(err))
}

func TestConnectivityError(t *testing.T) {
	t.Run("refused", func(t *testing.T) {
		err := &pkgerrors.ConnectivityError{Endpoint: "api", Err: errors.New("connection refused")}
		assert.True(t, pkgerrors.IsConnectivity(err))
		assert.True(t, errors.Is(err, pkgerrors.ErrUnavailable))
		assert.False(t, pkgerrors.IsTimeout(err))
	})

	t.Run("timeout", func(t *testing.T) {
		err := &pkgerrors.ConnectivityError{Endpoint: "api", Timeout: true, Err: errors.New("deadline")}
		assert.True(t, pkgerrors.IsTimeout(err))
		assert.Contains(t, err.Error(), "timed out")
	})
}

func TestReconcileError(t *testing.T) {
	base := pkgerrors.NewIOError("write", "Books/Dune.md", errors.New("disk full"))
	err := &pkgerrors.ReconcileError{Kind: "book", ID: 12, Path: "Books/Dune.md", Err: base}
	assert.Contains(t, err.Error(), "reconcile book 12 (Books/Dune.md)")

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Operation)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"auth", pkgerrors.NewAuthenticationError("hardcover", "bearer", "Invalid API key. Please check your settings.", nil), "Invalid API key. Please check your settings."},
		{"validation", pkgerrors.NewValidationError("watermark", "x", "invalid watermark format"), "invalid watermark format"},
		{"rate limit", fmt.Errorf("fetch: %w", pkgerrors.NewAPIError("hardcover", 429, "slow down")), pkgerrors.MessageRateLimited},
		{"connectivity", &pkgerrors.ConnectivityError{Endpoint: "api", Err: errors.New("dns")}, pkgerrors.MessageConnectivity},
		{"other", errors.New("boom"), pkgerrors.MessageGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.UserMessage(tt.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
		assert.NoError(t, pkgerrors.WrapResource("load", "state", "", nil))
		assert.NoError(t, pkgerrors.WrapParse("header", "x", nil))
		assert.NoError(t, pkgerrors.WrapValidation("x", nil))
	})

	t.Run("WrapParse", func(t *testing.T) {
		err := pkgerrors.WrapParse("header", "a.md", errors.New("bad line"))
		var pe *pkgerrors.ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "parse error in header file a.md: bad line", pe.Error())
	})

	t.Run("WrapResource", func(t *testing.T) {
		err := pkgerrors.WrapResource("save", "state", "watermark", errors.New("locked"))
		assert.Equal(t, "failed to save state watermark: locked", err.Error())
	})
}
