package usecases_port

import (
	"context"

	"deal-finder-service/internal/core/domain"
)

// GetDealsUseCase serves filtered, ranked deal collections.
type GetDealsUseCase interface {
	Execute(ctx context.Context, filter domain.DealFilter) ([]domain.Listing, error)
}

// GetDealByIDUseCase looks up a single deal.
type GetDealByIDUseCase interface {
	Execute(ctx context.Context, id string) (domain.Listing, error)
}
