// Package transport provides the authenticated HTTP client used by library
// sources. It maps transport-level failures onto the error types in
// pkg/errors and never retries.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/agentstation/shelfmark/pkg/constants"
	"github.com/agentstation/shelfmark/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http    *http.Client
	auth    Authenticator
	apiKey  string
	service string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithService names the remote service in classified errors.
func WithService(name string) Option {
	return func(c *Client) {
		c.service = name
	}
}

// New creates a new transport client that authenticates every request with
// apiKey.
func New(auth Authenticator, apiKey string, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    auth,
		apiKey:  apiKey,
		service: "library",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Do performs an HTTP request with authentication applied. Network failures
// are returned as classified errors.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, Classify(ctx, req.URL.String(), err)
	}
	return resp, nil
}

// PostJSON marshals body and posts it to url.
func (c *Client) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapParse("json", "request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WrapResource("create", "request", "POST "+url, err)
	}
	return c.Do(ctx, req)
}
