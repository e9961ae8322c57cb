package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"deal-finder-service/internal/core/domain"
)

const (
	canonicalListingEvent   = "CanonicalListingEvent"
	canonicalListingVersion = "1.0.0"
)

// listingPayload is the wire shape of a canonical listing.
type listingPayload struct {
	ID                string  `json:"id"`
	Source            string  `json:"source"`
	URL               string  `json:"url"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	ListedPrice       float64 `json:"listed_price"`
	PredictedPrice    float64 `json:"predicted_price"`
	UndervaluePercent float64 `json:"undervalue_percent"`
	LowConfidence     bool    `json:"low_confidence"`
	Year              int     `json:"year"`
	Make              string  `json:"make"`
	Model             string  `json:"model"`
	Mileage           *int    `json:"mileage"`
	Location          string  `json:"location"`
	PostedAt          string  `json:"posted_at"`
	CreatedAt         string  `json:"created_at"`
}

// ValidateListing serializes the listing to its canonical payload and checks
// it against the CanonicalListingEvent schema. Used as the last gate before
// the store.
func ValidateListing(l domain.Listing) error {
	payload := listingPayload{
		ID:                l.ID,
		Source:            l.Source,
		URL:               l.URL,
		Title:             l.Title,
		Description:       l.Description,
		ListedPrice:       l.ListedPrice,
		PredictedPrice:    l.PredictedPrice,
		UndervaluePercent: l.UndervaluePercent,
		LowConfidence:     l.LowConfidence,
		Year:              l.Year,
		Make:              l.Make,
		Model:             l.Model,
		Mileage:           l.Mileage,
		Location:          l.Location,
		PostedAt:          l.PostedAt.UTC().Format(time.RFC3339),
		CreatedAt:         l.CreatedAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal canonical listing: %w", err)
	}
	return ValidateEvent(canonicalListingEvent, canonicalListingVersion, body)
}
