package valuation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"deal-finder-service/internal/contextkeys"
	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// ComparablesReader is the slice of the store the engine reads historical
// data through. Reads tolerate slightly stale results and never block
// concurrent inserts.
type ComparablesReader interface {
	FetchComparables(ctx context.Context, mk, model string, yearFrom, yearTo int) ([]port.ComparablePoint, error)
}

// TableEngine implements port.ValuationPort.
//
// The primary path is the embedded price table: a pure function of the
// inputs, so identical listings always get identical predictions. When the
// table has no entry the engine averages observed comparable listings from
// the store; when there are none of those either it falls back to the generic
// depreciation curve and flags the result low confidence. It never returns a
// zero or negative price.
type TableEngine struct {
	comparables   ComparablesReader
	referenceYear int
}

// NewTableEngine creates a new engine instance. referenceYear pins the age
// computation for the lifetime of the engine; pass 0 to use the current year.
func NewTableEngine(comparables ComparablesReader, referenceYear int) (*TableEngine, error) {
	if comparables == nil {
		return nil, fmt.Errorf("comparables reader cannot be nil")
	}
	if referenceYear <= 0 {
		referenceYear = time.Now().UTC().Year()
	}
	return &TableEngine{
		comparables:   comparables,
		referenceYear: referenceYear,
	}, nil
}

// Predict produces a fair-price estimate for one normalized listing.
func (e *TableEngine) Predict(ctx context.Context, in domain.ValuationInput) (domain.Valuation, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TableEngine",
		"make":      in.Make,
		"model":     in.Model,
		"year":      in.Year,
	})

	mk := strings.ToLower(strings.TrimSpace(in.Make))
	modelLine := modelLineKey(in.Model)

	if base, ok := lookupBaseline(mk, modelLine); ok {
		price := e.adjust(base.BasePrice, base.AnnualDepreciation, in)
		return domain.Valuation{Price: price, Confidence: domain.ConfidenceHigh}, nil
	}

	if val, ok := e.predictFromComparables(ctx, logger, in, mk, modelLine); ok {
		return val, nil
	}

	logger.Warn("No table entry and no comparables, using generic curve", nil)
	price := e.adjust(genericBaseline.BasePrice, genericBaseline.AnnualDepreciation, in)
	return domain.Valuation{Price: price, Confidence: domain.ConfidenceLow}, nil
}

// predictFromComparables averages observed listings of the same make/model
// within ±2 model years.
func (e *TableEngine) predictFromComparables(ctx context.Context, logger port.LoggerPort, in domain.ValuationInput, mk, modelLine string) (domain.Valuation, bool) {
	points, err := e.comparables.FetchComparables(ctx, mk, modelLine, in.Year-2, in.Year+2)
	if err != nil {
		logger.Error("Failed to fetch comparables, falling back to generic curve", err, nil)
		return domain.Valuation{}, false
	}
	if len(points) == 0 {
		return domain.Valuation{}, false
	}

	var sum float64
	for _, p := range points {
		sum += p.ListedPrice
	}
	price := sum / float64(len(points))
	price = applyMileageAdjustment(price, in.Year, in.Mileage, e.referenceYear)
	price = applyRegionFactor(price, in.Location)
	price = math.Max(price, minPredictedPrice)

	logger.Debug("Predicted from comparables", port.Fields{
		"points": len(points),
		"price":  price,
	})
	return domain.Valuation{Price: price, Confidence: domain.ConfidenceComparable}, true
}

// adjust runs the full table pipeline: depreciate, then mileage, then region,
// then the positivity floor.
func (e *TableEngine) adjust(basePrice, annualDepreciation float64, in domain.ValuationInput) float64 {
	age := e.referenceYear - in.Year
	if age < 0 {
		age = 0
	}
	if age > maxDepreciationYears {
		age = maxDepreciationYears
	}

	price := basePrice * math.Pow(1-annualDepreciation, float64(age))
	price = applyMileageAdjustment(price, in.Year, in.Mileage, e.referenceYear)
	price = applyRegionFactor(price, in.Location)
	return math.Max(price, minPredictedPrice)
}

// applyMileageAdjustment shifts the price by the odometer's distance from the
// expected pace. Absent mileage means no adjustment — the expected pace is
// assumed. The shift is clamped to ±30% so a typo'd odometer cannot dominate.
func applyMileageAdjustment(price float64, year int, mileage *int, referenceYear int) float64 {
	if mileage == nil {
		return price
	}
	age := referenceYear - year
	if age < 1 {
		age = 1
	}
	expected := float64(age * expectedMilesPerYear)
	adjustment := (expected - float64(*mileage)) * dollarsPerMile

	limit := price * 0.30
	if adjustment > limit {
		adjustment = limit
	}
	if adjustment < -limit {
		adjustment = -limit
	}
	return price + adjustment
}

// applyRegionFactor applies a market factor when a location token matches a
// known region; unknown or absent locations pass through unchanged.
func applyRegionFactor(price float64, location string) float64 {
	if location == "" {
		return price
	}
	cleaned := strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(strings.ToLower(location))
	for _, token := range strings.Fields(cleaned) {
		if factor, ok := regionFactors[token]; ok {
			return price * factor
		}
	}
	return price
}

// lookupBaseline resolves a make/model-line pair in the price table.
func lookupBaseline(mk, modelLine string) (baseline, bool) {
	models, ok := priceTable[mk]
	if !ok {
		return baseline{}, false
	}
	base, ok := models[modelLine]
	return base, ok
}

// modelLineKey reduces a model string like "Civic LX" to its line key "civic".
func modelLineKey(model string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(model)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
