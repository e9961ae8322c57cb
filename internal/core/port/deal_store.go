package port

import (
	"context"

	"deal-finder-service/internal/core/domain"
)

// ComparablePoint is one observed data point the valuation engine may average
// over.
type ComparablePoint struct {
	Year        int
	ListedPrice float64
	Mileage     *int
}

// DealStorePort is the persistence contract for listings and their
// valuations. Upsert must be safe under concurrent calls for the same
// (source, url) key: at most one row per key, ever.
type DealStorePort interface {
	// Upsert inserts the listing if its (source, url) key is unseen and
	// reports whether an insert happened. A re-seen key is a no-op; the
	// stored valuation stays frozen at its first-seen value.
	Upsert(ctx context.Context, listing domain.Listing) (bool, error)

	// QueryDeals returns listings matching the filter, ordered by
	// undervalue percent desc, then posted_at desc, then id asc.
	QueryDeals(ctx context.Context, filter domain.DealFilter) ([]domain.Listing, error)

	// GetDealByID returns one listing or domain.ErrNotFound.
	GetDealByID(ctx context.Context, id string) (domain.Listing, error)

	// FetchComparables returns observed listings of the same make/model
	// within the year range, for comparable-based valuation. Readers
	// tolerate slightly stale data; this must not block inserts.
	FetchComparables(ctx context.Context, mk, model string, yearFrom, yearTo int) ([]ComparablePoint, error)
}
