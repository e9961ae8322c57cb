// Package craigslist implements port.SourceFetcherPort for craigslist's
// cars+trucks search pages.
package craigslist

import (
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"deal-finder-service/internal/constants"
)

// SourceName is the registry key for this adapter.
const SourceName = "craigslist"

// CraigslistFetcherAdapter fetches raw listing rows from one craigslist
// region page. It performs only the network read; no persistence.
type CraigslistFetcherAdapter struct {
	collector       *colly.Collector
	baseURLOverride string
}

// NewCraigslistFetcherAdapter creates a new adapter instance. baseURLOverride
// replaces the per-city URL template when set (used against local fixtures);
// leave it empty in production.
func NewCraigslistFetcherAdapter(baseURLOverride string) (*CraigslistFetcherAdapter, error) {
	collector := colly.NewCollector(
		colly.UserAgent(constants.CraigslistUserAgent),
	)
	collector.SetRequestTimeout(15 * time.Second)

	return &CraigslistFetcherAdapter{
		collector:       collector,
		baseURLOverride: baseURLOverride,
	}, nil
}

// searchURL resolves the region search URL for one city.
func (a *CraigslistFetcherAdapter) searchURL(city string) string {
	if a.baseURLOverride != "" {
		return a.baseURLOverride
	}
	return fmt.Sprintf(constants.CraigslistBaseURLTemplate, city)
}
