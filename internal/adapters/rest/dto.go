package rest

import (
	"math"
	"time"

	"deal-finder-service/internal/core/domain"
)

// ScrapeBody is the request body of POST /scrape/{source}.
type ScrapeBody struct {
	City       string `json:"city"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// DealResponse is the wire shape of one deal. Undervalue is rounded to one
// decimal for display; filtering happens on the exact value in the store.
type DealResponse struct {
	ID                string  `json:"id"`
	Source            string  `json:"source"`
	URL               string  `json:"url"`
	Title             string  `json:"title"`
	Description       string  `json:"description,omitempty"`
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

// ScrapeSummaryResponse is the response body of POST /scrape/{source}.
type ScrapeSummaryResponse struct {
	Source     string         `json:"source"`
	City       string         `json:"city"`
	Query      string         `json:"query"`
	Inserted   int            `json:"inserted"`
	Skipped    int            `json:"skipped"`
	Duplicates int            `json:"duplicates"`
	Deals      []DealResponse `json:"deals"`
}

func toDealResponse(l domain.Listing) DealResponse {
	return DealResponse{
		ID:                l.ID,
		Source:            l.Source,
		URL:               l.URL,
		Title:             l.Title,
		Description:       l.Description,
		ListedPrice:       l.ListedPrice,
		PredictedPrice:    math.Round(l.PredictedPrice*100) / 100,
		UndervaluePercent: math.Round(l.UndervaluePercent*10) / 10,
		LowConfidence:     l.LowConfidence,
		Year:              l.Year,
		Make:              l.Make,
		Model:             l.Model,
		Mileage:           l.Mileage,
		Location:          l.Location,
		PostedAt:          l.PostedAt.UTC().Format(time.RFC3339),
		CreatedAt:         l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toDealResponses(listings []domain.Listing) []DealResponse {
	responses := make([]DealResponse, 0, len(listings))
	for _, l := range listings {
		responses = append(responses, toDealResponse(l))
	}
	return responses
}
