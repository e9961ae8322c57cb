package craigslist

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gocolly/colly/v2"

	"deal-finder-service/internal/constants"
	"deal-finder-service/internal/contextkeys"
	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// FetchListings fetches up to req.MaxResults raw records from the region
// search page. A malformed row is skipped and counted, never fatal; a request
// that fails entirely is reported as domain.ErrSourceUnavailable. Zero rows
// with a nil error is a valid outcome.
func (a *CraigslistFetcherAdapter) FetchListings(ctx context.Context, req domain.ScrapeRequest) ([]domain.RawRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{
		"component": "CraigslistFetcherAdapter",
		"city":      req.City,
		"query":     req.Query,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := a.collector.Clone()

	var records []domain.RawRecord
	var responseErr error
	skippedRows := 0

	collector.OnRequest(func(r *colly.Request) {
		fetchLogger.Debug("Making request to fetch listings", port.Fields{
			"url": r.URL.String(),
		})
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	})

	collector.OnHTML("li.result-row", func(e *colly.HTMLElement) {
		if len(records) >= req.MaxResults {
			return
		}

		record, ok := mapResultRow(e)
		if !ok {
			skippedRows++
			fetchLogger.Debug("Skipping malformed result row", nil)
			return
		}
		records = append(records, record)
	})

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("hasPic", constants.CraigslistParamHasPic)
	params.Set("srchType", constants.CraigslistParamSearchType)

	searchURL := a.searchURL(req.City) + "?" + params.Encode()
	if err := collector.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}

	fetchLogger.Info("Fetched raw listings", port.Fields{
		"records":      len(records),
		"skipped_rows": skippedRows,
	})
	return records, nil
}
