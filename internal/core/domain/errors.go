package domain

import "errors"

// Request-level errors propagate to the API boundary; record-level errors are
// absorbed into the batch summary.
var (
	// ErrUnknownSource – the {source} path segment matches no registered adapter.
	ErrUnknownSource = errors.New("unknown listing source")

	// ErrSourceUnavailable – the external marketplace cannot be reached at all.
	// Distinct from a valid zero-result fetch.
	ErrSourceUnavailable = errors.New("listing source unavailable")

	// ErrRecordRejected – normalization could not extract the required fields
	// (year, make, model, positive listed price).
	ErrRecordRejected = errors.New("record rejected")

	// ErrNoComparableData – the valuation engine has no table entry and no
	// observed comparables for the requested make/model.
	ErrNoComparableData = errors.New("no comparable data for valuation")

	// ErrInvalidRequest – malformed client input, rejected before any work.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound – the requested deal does not exist.
	ErrNotFound = errors.New("deal not found")
)
