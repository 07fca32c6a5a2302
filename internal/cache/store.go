package cache

import (
	"context"

	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Store is the persistent store contract. Implementations return
// *domain.StoreError on failure and bind every value as a query parameter.
type Store interface {
	// SelectByLocationID calls scan once per row of t owned by locationID, in insertion order.
	SelectByLocationID(ctx context.Context, t domain.Table, locationID int64, scan func(domain.RowScanner) error) error
	// SelectBySearchQuery returns the locations stored for an exact search query.
	SelectBySearchQuery(ctx context.Context, searchQuery string) ([]domain.Location, error)
	// Insert writes one row and returns its id. For tables with a unique key a
	// conflicting insert returns the id of the existing row.
	Insert(ctx context.Context, t domain.Table, values []any) (int64, error)
	// DeleteByLocationID removes every row of t owned by locationID.
	DeleteByLocationID(ctx context.Context, t domain.Table, locationID int64) (int64, error)
}

// RefreshPublisher announces completed refetches.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, ev domain.RefreshEvent) error
}
