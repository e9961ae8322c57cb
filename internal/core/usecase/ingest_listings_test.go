package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-finder-service/internal/adapters/memstorage"
	"deal-finder-service/internal/adapters/sources"
	"deal-finder-service/internal/core/domain"
)

// fakeFetcher returns canned records or a canned error.
type fakeFetcher struct {
	records []domain.RawRecord
	err     error
}

func (f *fakeFetcher) FetchListings(ctx context.Context, req domain.ScrapeRequest) ([]domain.RawRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > req.MaxResults {
		return f.records[:req.MaxResults], nil
	}
	return f.records, nil
}

// fixedValuator predicts the same price for everything.
type fixedValuator struct {
	price      float64
	confidence domain.Confidence
}

func (v fixedValuator) Predict(ctx context.Context, in domain.ValuationInput) (domain.Valuation, error) {
	return domain.Valuation{Price: v.price, Confidence: v.confidence}, nil
}

func testRequest() domain.ScrapeRequest {
	return domain.ScrapeRequest{Source: "craigslist", City: "sfbay", Query: "honda civic", MaxResults: 10}
}

func newIngestFixture(fetcher *fakeFetcher, valuator fixedValuator, keepLowConfidence bool) (*IngestListingsUseCase, *memstorage.MemStorageAdapter) {
	registry := sources.NewRegistry()
	registry.Register("craigslist", fetcher)
	store := memstorage.NewMemStorageAdapter()
	uc := NewIngestListingsUseCase(registry, valuator, store, IngestConfig{
		Concurrency:       4,
		Timeout:           30 * time.Second,
		MaxResultsCap:     100,
		KeepLowConfidence: keepLowConfidence,
	})
	return uc, store
}

func TestIngestSkipsMalformedRecords(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.RawRecord{
		{URL: "https://x/a", Title: "2018 Honda Civic LX", PriceText: "$12,000"},
		{URL: "https://x/b", Title: "2017 Honda Civic EX", PriceText: "$11,500"},
		{URL: "https://x/bad", Title: "2016 Honda Civic", PriceText: "make offer"},
	}}
	uc, store := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	summary, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Len(t, summary.Deals, 2)
	assert.Equal(t, 2, store.Len())
}

func TestIngestIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.RawRecord{
		{URL: "https://x/a", Title: "2018 Honda Civic LX", PriceText: "$12,000"},
		{URL: "https://x/b", Title: "2017 Honda Civic EX", PriceText: "$11,500"},
	}}
	uc, store := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	first, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, 2, first.Inserted)

	second, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Duplicates)
	assert.Equal(t, 2, store.Len())
}

func TestIngestUnknownSource(t *testing.T) {
	uc, _ := newIngestFixture(&fakeFetcher{}, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	req := testRequest()
	req.Source = "ebay-motors"
	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrUnknownSource)
}

func TestIngestInvalidRequest(t *testing.T) {
	uc, _ := newIngestFixture(&fakeFetcher{}, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	req := testRequest()
	req.MaxResults = 0
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	req = testRequest()
	req.City = ""
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestIngestSourceUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{err: domain.ErrSourceUnavailable}
	uc, store := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	_, err := uc.Execute(context.Background(), testRequest())

	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, 0, store.Len())
}

func TestIngestLowConfidencePolicy(t *testing.T) {
	records := []domain.RawRecord{
		{URL: "https://x/a", Title: "2012 Zonda Exotic S", PriceText: "$40,000"},
	}

	// Dropped when the policy says so.
	uc, store := newIngestFixture(&fakeFetcher{records: records}, fixedValuator{price: 45000, confidence: domain.ConfidenceLow}, false)
	summary, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, store.Len())

	// Kept and flagged otherwise.
	uc, store = newIngestFixture(&fakeFetcher{records: records}, fixedValuator{price: 45000, confidence: domain.ConfidenceLow}, true)
	summary, err = uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted)
	assert.True(t, summary.Deals[0].LowConfidence)
	assert.Equal(t, 1, store.Len())
}

func TestIngestMaxResultsBound(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.RawRecord{
		{URL: "https://x/a", Title: "2018 Honda Civic LX", PriceText: "$12,000"},
		{URL: "https://x/b", Title: "2017 Honda Civic EX", PriceText: "$11,500"},
		{URL: "https://x/c", Title: "2016 Honda Civic LX", PriceText: "$10,500"},
	}}
	uc, _ := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	req := testRequest()
	req.MaxResults = 2
	summary, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
}

// Two listings with the same prediction and different asking prices must rank
// by undervalue, and the threshold query must cut between them.
func TestIngestThenQueryByUndervalue(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.RawRecord{
		{URL: "https://x/a", Title: "2018 Honda Civic LX", PriceText: "$12,000"},
		{URL: "https://x/b", Title: "2018 Honda Civic EX", PriceText: "$14,250"},
	}}
	uc, store := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	summary, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Inserted)

	getDeals := NewGetDealsUseCase(store)

	all, err := getDeals.Execute(context.Background(), domain.DealFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://x/a", all[0].URL)
	assert.InDelta(t, 20.0, all[0].UndervaluePercent, 1e-9)
	assert.InDelta(t, 5.0, all[1].UndervaluePercent, 1e-9)

	filtered, err := getDeals.Execute(context.Background(), domain.DealFilter{MinUndervaluePercent: 10})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "https://x/a", filtered[0].URL)
}

func TestGetDealByID(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.RawRecord{
		{URL: "https://x/a", Title: "2018 Honda Civic LX", PriceText: "$12,000"},
	}}
	uc, store := newIngestFixture(fetcher, fixedValuator{price: 15000, confidence: domain.ConfidenceHigh}, true)

	summary, err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, summary.Deals, 1)

	getByID := NewGetDealByIDUseCase(store)

	deal, err := getByID.Execute(context.Background(), summary.Deals[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "https://x/a", deal.URL)

	_, err = getByID.Execute(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = getByID.Execute(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
