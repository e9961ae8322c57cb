package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deal-finder-service/internal/contextkeys"
	"deal-finder-service/internal/contracts"
	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/normalize"
	"deal-finder-service/internal/core/port"
)

// IngestConfig bounds one ingestion run.
type IngestConfig struct {
	// Concurrency limits how many records move through
	// normalize→valuate→upsert at once, to respect source rate limits.
	Concurrency int
	// Timeout bounds one scrape request end to end. Partial progress is
	// kept when it expires.
	Timeout time.Duration
	// MaxResultsCap is the ceiling applied to the client's max_results.
	MaxResultsCap int
	// KeepLowConfidence – store low-confidence valuations (flagged) instead
	// of skipping the record.
	KeepLowConfidence bool
}

// IngestListingsUseCase coordinates one scrape request end to end:
// adapter → normalizer → valuation → store. Each record proceeds
// independently; one bad record increments the skip count and never halts
// the rest. A listing is persisted only once it has both its normalized
// fields and a valuation.
type IngestListingsUseCase struct {
	sources  port.SourceRegistryPort
	valuator port.ValuationPort
	store    port.DealStorePort
	cfg      IngestConfig
}

// NewIngestListingsUseCase creates a new use case instance.
func NewIngestListingsUseCase(
	sources port.SourceRegistryPort,
	valuator port.ValuationPort,
	store port.DealStorePort,
	cfg IngestConfig,
) *IngestListingsUseCase {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxResultsCap < 1 {
		cfg.MaxResultsCap = 100
	}
	return &IngestListingsUseCase{
		sources:  sources,
		valuator: valuator,
		store:    store,
		cfg:      cfg,
	}
}

// Execute runs one scrape request and returns its outcome summary.
func (uc *IngestListingsUseCase) Execute(ctx context.Context, req domain.ScrapeRequest) (domain.ScrapeSummary, error) {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "IngestListings",
		"source":   req.Source,
		"city":     req.City,
		"query":    req.Query,
	})

	summary := domain.ScrapeSummary{
		Source: req.Source,
		City:   req.City,
		Query:  req.Query,
	}

	if req.City == "" || req.Query == "" {
		return summary, fmt.Errorf("%w: city and query are required", domain.ErrInvalidRequest)
	}
	if req.MaxResults <= 0 {
		return summary, fmt.Errorf("%w: max_results must be positive", domain.ErrInvalidRequest)
	}
	if req.MaxResults > uc.cfg.MaxResultsCap {
		req.MaxResults = uc.cfg.MaxResultsCap
	}

	fetcher, ok := uc.sources.Lookup(req.Source)
	if !ok {
		return summary, fmt.Errorf("%w: %q (registered: %v)", domain.ErrUnknownSource, req.Source, uc.sources.Names())
	}

	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	ucLogger.Info("Starting scrape request", port.Fields{"max_results": req.MaxResults})

	records, err := fetcher.FetchListings(ctx, req)
	if err != nil {
		ucLogger.Error("Fetch failed", err, nil)
		return summary, fmt.Errorf("fetching %s listings: %w", req.Source, err)
	}
	if len(records) == 0 {
		ucLogger.Info("No listings found for query", nil)
		return summary, nil
	}

	now := time.Now().UTC()

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.Concurrency)

	for _, record := range records {
		g.Go(func() error {
			// A timed-out request stops scheduling work but keeps what
			// was already persisted.
			if gCtx.Err() != nil {
				return nil
			}

			listing, processErr := uc.processRecord(gCtx, req, record, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(processErr, errDuplicate):
				summary.Duplicates++
			case processErr != nil:
				summary.Skipped++
			default:
				summary.Inserted++
				summary.Deals = append(summary.Deals, listing)
			}
			return nil
		})
	}

	// Workers absorb their own failures, so Wait only aggregates.
	_ = g.Wait()

	if ctx.Err() != nil {
		ucLogger.Warn("Scrape request timed out, reporting partial outcome", port.Fields{
			"inserted": summary.Inserted,
			"skipped":  summary.Skipped,
		})
	}

	ucLogger.Info("Scrape request completed", port.Fields{
		"inserted":   summary.Inserted,
		"skipped":    summary.Skipped,
		"duplicates": summary.Duplicates,
	})
	return summary, nil
}

// errDuplicate marks a re-seen (source, url) key, counted apart from skips.
var errDuplicate = errors.New("duplicate listing")

// processRecord moves one raw record through normalize → valuate → validate
// → upsert. Every failure is local to the record.
func (uc *IngestListingsUseCase) processRecord(ctx context.Context, req domain.ScrapeRequest, record domain.RawRecord, now time.Time) (domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "IngestListings",
		"url":      record.URL,
	})

	listing, err := normalize.Normalize(req.Source, req.City, record, now)
	if err != nil {
		logger.Debug("Record rejected by normalizer", port.Fields{"reason": err.Error()})
		return domain.Listing{}, err
	}

	valuation, err := uc.valuator.Predict(ctx, domain.ValuationInput{
		Year:     listing.Year,
		Make:     listing.Make,
		Model:    listing.Model,
		Mileage:  listing.Mileage,
		Location: listing.Location,
	})
	if err != nil {
		logger.Warn("Valuation failed, skipping record", port.Fields{"error": err.Error()})
		return domain.Listing{}, err
	}

	if valuation.Confidence == domain.ConfidenceLow && !uc.cfg.KeepLowConfidence {
		logger.Debug("Skipping low-confidence valuation", port.Fields{
			"reason": domain.ErrNoComparableData.Error(),
		})
		return domain.Listing{}, domain.ErrNoComparableData
	}

	listing.PredictedPrice = valuation.Price
	listing.UndervaluePercent = domain.UndervaluePercent(valuation.Price, listing.ListedPrice)
	listing.LowConfidence = valuation.Confidence == domain.ConfidenceLow

	if err := contracts.ValidateListing(listing); err != nil {
		logger.Warn("Canonical listing failed contract validation, skipping", port.Fields{"error": err.Error()})
		return domain.Listing{}, fmt.Errorf("%w: %v", domain.ErrRecordRejected, err)
	}

	inserted, err := uc.store.Upsert(ctx, listing)
	if err != nil {
		logger.Error("Failed to upsert listing", err, nil)
		return domain.Listing{}, err
	}
	if !inserted {
		logger.Debug("Listing already known, skipping", nil)
		return domain.Listing{}, errDuplicate
	}

	logger.Debug("Listing persisted", port.Fields{
		"undervalue_percent": listing.UndervaluePercent,
		"predicted_price":    listing.PredictedPrice,
	})
	return listing, nil
}
