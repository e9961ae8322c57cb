package usecase

import (
	"context"
	"fmt"

	"deal-finder-service/internal/contextkeys"
	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// GetDealsUseCase answers ranked deal queries from the store.
type GetDealsUseCase struct {
	store port.DealStorePort
}

// NewGetDealsUseCase creates a new use case instance.
func NewGetDealsUseCase(store port.DealStorePort) *GetDealsUseCase {
	return &GetDealsUseCase{store: store}
}

// Execute returns the deals matching the filter, best first.
func (uc *GetDealsUseCase) Execute(ctx context.Context, filter domain.DealFilter) ([]domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetDeals",
	})

	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidRequest)
	}

	deals, err := uc.store.QueryDeals(ctx, filter)
	if err != nil {
		ucLogger.Error("Failed to query deals", err, nil)
		return nil, fmt.Errorf("querying deals: %w", err)
	}

	ucLogger.Info("Deal query completed", port.Fields{
		"min_undervalue_percent": filter.MinUndervaluePercent,
		"results":                len(deals),
	})
	return deals, nil
}

// GetDealByIDUseCase resolves a single deal by its canonical id.
type GetDealByIDUseCase struct {
	store port.DealStorePort
}

// NewGetDealByIDUseCase creates a new use case instance.
func NewGetDealByIDUseCase(store port.DealStorePort) *GetDealByIDUseCase {
	return &GetDealByIDUseCase{store: store}
}

// Execute returns the deal with the given id, or domain.ErrNotFound.
func (uc *GetDealByIDUseCase) Execute(ctx context.Context, id string) (domain.Listing, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetDealByID",
		"deal_id":  id,
	})

	if id == "" {
		return domain.Listing{}, fmt.Errorf("%w: deal id is required", domain.ErrInvalidRequest)
	}

	deal, err := uc.store.GetDealByID(ctx, id)
	if err != nil {
		ucLogger.Warn("Deal lookup failed", port.Fields{"error": err.Error()})
		return domain.Listing{}, err
	}
	return deal, nil
}
