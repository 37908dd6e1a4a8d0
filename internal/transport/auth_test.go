package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shelfmark/pkg/errors"
)

func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&NoAuth{}).Apply(req, "test-api-key")
	assert.Empty(t, req.Header)
}

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"test-api-key", "Bearer test-api-key"},
		{"Bearer test-api-key", "Bearer test-api-key"},
		{"  bearer   test-api-key ", "Bearer test-api-key"},
		{"BEARER x", "Bearer x"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}
			(&BearerAuth{}).Apply(req, tt.key)
			assert.Equal(t, tt.want, req.Header.Get("Authorization"))
		})
	}
}

func TestHeaderAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	(&HeaderAuth{Header: "x-api-key"}).Apply(req, "test-api-key")
	assert.Equal(t, "test-api-key", req.Header.Get("x-api-key"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestDecodeResponseClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.True(t, errors.IsAPIKeyError(err))
			assert.Equal(t, MessageAuthFailed, errors.UserMessage(err))
		}},
		{"forbidden", http.StatusForbidden, func(t *testing.T, err error) {
			assert.True(t, errors.IsAPIKeyError(err))
		}},
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			assert.True(t, errors.IsRateLimited(err))
			assert.Equal(t, errors.MessageRateLimited, errors.UserMessage(err))
		}},
		{"server error", http.StatusBadGateway, func(t *testing.T, err error) {
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
			assert.Equal(t, "boom", apiErr.Message)
			assert.Equal(t, errors.MessageGeneric, errors.UserMessage(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("boom"))
			}))
			defer srv.Close()

			c := New(&BearerAuth{}, "k")
			ctx := context.Background()
			resp, err := c.PostJSON(ctx, srv.URL, map[string]string{})
			require.NoError(t, err)

			var out map[string]any
			err = c.DecodeResponse(ctx, resp, &out)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDoSetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(&BearerAuth{}, "Bearer secret")
	ctx := context.Background()
	resp, err := c.PostJSON(ctx, srv.URL, map[string]int{"a": 1})
	require.NoError(t, err)

	var out struct{ OK bool }
	require.NoError(t, c.DecodeResponse(ctx, resp, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestConnectivityErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(nil, "").PostJSON(context.Background(), url, nil)
	require.Error(t, err)
	assert.True(t, errors.IsConnectivity(err))
	assert.Equal(t, errors.MessageConnectivity, errors.UserMessage(err))
}

func TestTimeoutIsClassified(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(nil, "", WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := c.PostJSON(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestCanceledContextPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, "").PostJSON(ctx, "http://127.0.0.1:1", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
