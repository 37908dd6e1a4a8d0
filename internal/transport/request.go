package transport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/logging"
)

// maxErrorBody caps how much of an error response is kept in messages.
const maxErrorBody = 512

// Messages for rejected credentials and throttling.
const (
	MessageAuthFailed  = "Authentication failed: your API key appears to be invalid or expired. Check your configuration and update it."
	MessageRateLimited = "Rate limit exceeded: too many requests to the library API. Try again in a few minutes."
)

// DecodeResponse decodes a JSON response into target. Non-2xx responses are
// classified: 401 and 403 become authentication errors, everything else an
// API error carrying the status code.
func (c *Client) DecodeResponse(ctx context.Context, resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classify(ctx, endpoint(resp), err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.NewAuthenticationError(c.service, "bearer", MessageAuthFailed, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errors.APIError{Service: c.service, StatusCode: resp.StatusCode, Message: MessageRateLimited, Endpoint: endpoint(resp)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &errors.APIError{Service: c.service, StatusCode: resp.StatusCode, Message: truncate(string(body)), Endpoint: endpoint(resp)}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

// Classify maps a failed round trip onto the error taxonomy. Context
// cancellation is passed through unchanged.
func Classify(ctx context.Context, endpoint string, err error) error {
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	var netErr net.Error
	timeout := errors.As(err, &netErr) && netErr.Timeout()
	if ctx.Err() == context.DeadlineExceeded {
		timeout = true
	}
	return &errors.ConnectivityError{Endpoint: endpoint, Timeout: timeout, Err: err}
}

func endpoint(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
