// Package memstorage is the in-memory implementation of the deal store, used
// when no DATABASE_URL is configured and throughout the tests. It honors the
// same contract as the postgres adapter: at most one row per (source, url)
// even under concurrent upserts, and fully deterministic query ordering.
package memstorage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// MemStorageAdapter implements port.DealStorePort with a mutex-guarded map
// keyed by the derived listing ID.
type MemStorageAdapter struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

// NewMemStorageAdapter creates an empty in-memory store.
func NewMemStorageAdapter() *MemStorageAdapter {
	return &MemStorageAdapter{
		listings: make(map[string]domain.Listing),
	}
}

// Upsert inserts the listing if its key is unseen. The write lock makes the
// check-and-insert atomic, so two concurrent upserts of the same key end with
// exactly one stored row and exactly one true return.
func (a *MemStorageAdapter) Upsert(ctx context.Context, listing domain.Listing) (bool, error) {
	key := domain.ListingID(listing.Source, listing.URL)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.listings[key]; exists {
		return false, nil
	}
	listing.ID = key
	a.listings[key] = listing
	return true, nil
}

// QueryDeals filters on the unrounded undervalue percent and sorts by
// undervalue desc, posted_at desc, id asc.
func (a *MemStorageAdapter) QueryDeals(ctx context.Context, filter domain.DealFilter) ([]domain.Listing, error) {
	a.mu.RLock()
	result := make([]domain.Listing, 0, len(a.listings))
	for _, l := range a.listings {
		if l.UndervaluePercent < filter.MinUndervaluePercent {
			continue
		}
		if l.LowConfidence && !filter.IncludeLowConfidence {
			continue
		}
		if filter.Make != "" && !strings.EqualFold(l.Make, filter.Make) {
			continue
		}
		if filter.Model != "" && !strings.EqualFold(l.Model, filter.Model) {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(filter.Location)) {
			continue
		}
		result = append(result, l)
	}
	a.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].UndervaluePercent != result[j].UndervaluePercent {
			return result[i].UndervaluePercent > result[j].UndervaluePercent
		}
		if !result[i].PostedAt.Equal(result[j].PostedAt) {
			return result[i].PostedAt.After(result[j].PostedAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// GetDealByID returns one stored listing or domain.ErrNotFound.
func (a *MemStorageAdapter) GetDealByID(ctx context.Context, id string) (domain.Listing, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	listing, ok := a.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return listing, nil
}

// FetchComparables returns listed prices of the same make/model line within
// the year range. The read lock keeps it from blocking other readers;
// valuation tolerates the snapshot being slightly stale.
func (a *MemStorageAdapter) FetchComparables(ctx context.Context, mk, model string, yearFrom, yearTo int) ([]port.ComparablePoint, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var points []port.ComparablePoint
	for _, l := range a.listings {
		if !strings.EqualFold(l.Make, mk) {
			continue
		}
		if !modelLineMatches(l.Model, model) {
			continue
		}
		if l.Year < yearFrom || l.Year > yearTo {
			continue
		}
		points = append(points, port.ComparablePoint{
			Year:        l.Year,
			ListedPrice: l.ListedPrice,
			Mileage:     l.Mileage,
		})
	}
	return points, nil
}

// Len reports the number of stored listings.
func (a *MemStorageAdapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listings)
}

// modelLineMatches compares on the first model token, the same reduction the
// valuation engine uses.
func modelLineMatches(stored, requested string) bool {
	s := strings.Fields(strings.ToLower(stored))
	r := strings.Fields(strings.ToLower(requested))
	if len(s) == 0 || len(r) == 0 {
		return false
	}
	return s[0] == r[0]
}
