package usecases_port

import (
	"context"

	"deal-finder-service/internal/core/domain"
)

// IngestListingsUseCase drives one end-to-end scrape request.
type IngestListingsUseCase interface {
	Execute(ctx context.Context, req domain.ScrapeRequest) (domain.ScrapeSummary, error)
}
