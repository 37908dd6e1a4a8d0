// Package sources defines the library source a sync reads from.
//
// A library source resolves the account it is authenticated as, counts the
// records in that account and returns them page by page. Implementations
// classify their failures with the types in pkg/errors so that callers can
// tell authentication, rate-limit and connectivity problems apart.
package sources

import (
	"context"

	"github.com/agentstation/shelfmark/pkg/catalog"
)

// PageParams selects one page of records.
type PageParams struct {
	OwnerID int
	Offset  int
	Limit   int
	// UpdatedAfter restricts the page to records modified after this
	// timestamp. Empty means every record.
	UpdatedAfter string
}

// Library is a paged source of catalog records.
type Library interface {
	// Identity returns the id of the authenticated account.
	Identity(ctx context.Context) (int, error)
	// Count returns the number of records owned by ownerID.
	Count(ctx context.Context, ownerID int) (int, error)
	// Page returns records ordered by item id.
	Page(ctx context.Context, params PageParams) ([]catalog.Record, error)
}
