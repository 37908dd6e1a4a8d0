// Package hardcover implements the library source for the Hardcover
// GraphQL API.
package hardcover

import (
	"context"
	"strings"

	"github.com/agentstation/shelfmark/internal/transport"
	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/logging"
	"github.com/agentstation/shelfmark/pkg/settings"
	"github.com/agentstation/shelfmark/pkg/sources"
)

// DefaultEndpoint is the public GraphQL endpoint.
const DefaultEndpoint = "https://api.hardcover.app/v1/graphql"

// ServiceName names the service in errors.
const ServiceName = "hardcover"

// Client is a sources.Library backed by the Hardcover API.
type Client struct {
	transport *transport.Client
	endpoint  string
	queries   *QueryBuilder
}

var _ sources.Library = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the GraphQL endpoint.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithTransport replaces the transport client.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// New returns a client authenticating with apiKey. The selection of the
// library query follows s.
func New(apiKey string, s settings.Settings, opts ...Option) (*Client, error) {
	if strings.TrimSpace(transport.NormalizeKey(apiKey)) == "" {
		return nil, errors.NewAuthenticationError(ServiceName, "bearer",
			"An API key is required. Set SHELFMARK_API_KEY or api_key in the config file.", errors.ErrAPIKeyRequired)
	}
	c := &Client{
		transport: transport.New(&transport.BearerAuth{}, apiKey, transport.WithService(ServiceName)),
		endpoint:  DefaultEndpoint,
		queries:   NewQueryBuilder(s),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse[T any] struct {
	Data   T          `json:"data"`
	Errors []gqlError `json:"errors"`
}

// do posts a query and decodes its data. GraphQL error payloads become API
// errors carrying the first message.
func do[T any](ctx context.Context, c *Client, query string, vars map[string]any) (T, error) {
	var out gqlResponse[T]
	resp, err := c.transport.PostJSON(ctx, c.endpoint, gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return out.Data, err
	}
	if err := c.transport.DecodeResponse(ctx, resp, &out); err != nil {
		return out.Data, err
	}
	if len(out.Errors) > 0 {
		return out.Data, &errors.APIError{
			Service:  ServiceName,
			Message:  "GraphQL error: " + out.Errors[0].Message,
			Endpoint: c.endpoint,
		}
	}
	return out.Data, nil
}

// Identity returns the id of the account the key belongs to.
func (c *Client) Identity(ctx context.Context) (int, error) {
	data, err := do[struct {
		Me []struct {
			ID int `json:"id"`
		} `json:"me"`
	}](ctx, c, identityQuery, nil)
	if err != nil {
		return 0, err
	}
	if len(data.Me) == 0 {
		return 0, errors.NewAuthenticationError(ServiceName, "bearer",
			"Could not resolve the account for this API key.", errors.ErrAPIKeyInvalid)
	}
	logging.Ctx(ctx).Debug().Int("user_id", data.Me[0].ID).Msg("Resolved account")
	return data.Me[0].ID, nil
}

// Count returns the number of records in the account's library.
func (c *Client) Count(ctx context.Context, ownerID int) (int, error) {
	data, err := do[struct {
		Aggregate struct {
			Aggregate struct {
				Count int `json:"count"`
			} `json:"aggregate"`
		} `json:"user_books_aggregate"`
	}](ctx, c, countQuery, map[string]any{"userId": ownerID})
	if err != nil {
		return 0, err
	}
	return data.Aggregate.Aggregate.Count, nil
}

// Page returns one page of library records ordered by book id.
func (c *Client) Page(ctx context.Context, p sources.PageParams) ([]catalog.Record, error) {
	incremental := p.UpdatedAfter != ""
	vars := map[string]any{
		"userId": p.OwnerID,
		"offset": p.Offset,
		"limit":  p.Limit,
	}
	if incremental {
		vars["updatedAfter"] = p.UpdatedAfter
	}

	data, err := do[struct {
		UserBooks []catalog.Record `json:"user_books"`
	}](ctx, c, c.queries.LibraryQuery(incremental), vars)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().
		Int("offset", p.Offset).
		Int("limit", p.Limit).
		Int("records", len(data.UserBooks)).
		Msg("Fetched library page")
	return data.UserBooks, nil
}
