package port

import (
	"context"

	"deal-finder-service/internal/core/domain"
)

// ValuationPort produces a predicted fair price for a normalized listing.
//
// Predictions are deterministic for identical inputs under a fixed model
// version, degrade gracefully when mileage or location is absent, and are
// always positive. When the engine has no data at all it still returns a
// positive estimate flagged domain.ConfidenceLow; the caller decides whether
// to keep it.
type ValuationPort interface {
	Predict(ctx context.Context, in domain.ValuationInput) (domain.Valuation, error)
}
