package domain

import "time"

// Confidence describes how much comparable data backed a prediction.
type Confidence string

const (
	// ConfidenceHigh – predicted from the maintained price table.
	ConfidenceHigh Confidence = "high"
	// ConfidenceComparable – predicted from observed comparable listings.
	ConfidenceComparable Confidence = "comparable"
	// ConfidenceLow – generic fallback, no data for this make/model.
	ConfidenceLow Confidence = "low"
)

// RawRecord is one unprocessed row as the source adapter saw it.
// Only URL is guaranteed; everything else is free text.
type RawRecord struct {
	URL         string
	Title       string
	PriceText   string
	Description string
	Hood        string
	PostedAt    *time.Time
}

// Listing is the canonical record of one vehicle offer, enriched with its
// valuation. A listing is identified by (Source, URL); ID is derived from
// that pair and never changes.
type Listing struct {
	ID          string
	Source      string
	URL         string
	Title       string
	Description string

	ListedPrice       float64
	PredictedPrice    float64
	UndervaluePercent float64
	LowConfidence     bool

	Year     int
	Make     string
	Model    string
	Mileage  *int
	Location string

	PostedAt  time.Time
	CreatedAt time.Time
}

// ScrapeRequest is the ephemeral input of one ingestion run.
type ScrapeRequest struct {
	Source     string
	City       string
	Query      string
	MaxResults int
}

// ScrapeSummary is the terminal outcome of one ingestion run. Rejected and
// low-confidence-skipped records count as Skipped; re-seen listings count as
// Duplicates, not as skips.
type ScrapeSummary struct {
	Source     string
	City       string
	Query      string
	Inserted   int
	Skipped    int
	Duplicates int
	Deals      []Listing
}

// DealFilter selects and bounds a ranked deal query.
type DealFilter struct {
	MinUndervaluePercent float64
	Make                 string
	Model                string
	Location             string
	Limit                int
	IncludeLowConfidence bool
}

// ValuationInput is the shape the valuation engine predicts from.
type ValuationInput struct {
	Year     int
	Make     string
	Model    string
	Mileage  *int
	Location string
}

// Valuation is the engine's output. Price is always positive.
type Valuation struct {
	Price      float64
	Confidence Confidence
}

// UndervaluePercent computes the ranking metric, unrounded.
func UndervaluePercent(predicted, listed float64) float64 {
	if predicted <= 0 {
		return 0
	}
	return (predicted - listed) / predicted * 100
}
