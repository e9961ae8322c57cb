package port

import (
	"context"

	"deal-finder-service/internal/core/domain"
)

// SourceFetcherPort fetches raw records from one external marketplace.
// Implementations are source-specific and selected through the registry.
//
// A single malformed row must be skipped, not surfaced; a total connectivity
// failure is reported as domain.ErrSourceUnavailable. An empty result with a
// nil error is a valid outcome.
type SourceFetcherPort interface {
	FetchListings(ctx context.Context, req domain.ScrapeRequest) ([]domain.RawRecord, error)
}

// SourceRegistryPort resolves a source name from the URL path to its fetcher.
type SourceRegistryPort interface {
	Lookup(name string) (SourceFetcherPort, bool)

	// Names lists the registered sources, for diagnostics.
	Names() []string
}
