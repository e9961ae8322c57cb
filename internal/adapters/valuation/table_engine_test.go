package valuation

import (
	"context"
	"errors"
	"testing"

	"deal-finder-service/internal/core/domain"
	"deal-finder-service/internal/core/port"
)

// stubComparables is a canned ComparablesReader.
type stubComparables struct {
	points []port.ComparablePoint
	err    error
}

func (s stubComparables) FetchComparables(ctx context.Context, mk, model string, yearFrom, yearTo int) ([]port.ComparablePoint, error) {
	return s.points, s.err
}

func newTestEngine(t *testing.T, comparables ComparablesReader) *TableEngine {
	t.Helper()
	engine, err := NewTableEngine(comparables, 2026)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestPredictFromTableIsDeterministic(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	mileage := 96000
	in := domain.ValuationInput{Year: 2018, Make: "Honda", Model: "Civic LX", Mileage: &mileage, Location: "sfbay"}

	first, err := engine.Predict(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Predict(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if first.Price != second.Price {
		t.Errorf("identical inputs predicted %.2f then %.2f", first.Price, second.Price)
	}
	if first.Confidence != domain.ConfidenceHigh {
		t.Errorf("table hit must be high confidence, got %v", first.Confidence)
	}
	if first.Price <= 0 {
		t.Errorf("prediction must be positive, got %.2f", first.Price)
	}
}

func TestPredictLowerMileageRaisesPrice(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	low, high := 30000, 150000
	base := domain.ValuationInput{Year: 2018, Make: "Honda", Model: "Civic"}

	lowIn, highIn := base, base
	lowIn.Mileage = &low
	highIn.Mileage = &high

	lowVal, err := engine.Predict(ctx, lowIn)
	if err != nil {
		t.Fatal(err)
	}
	highVal, err := engine.Predict(ctx, highIn)
	if err != nil {
		t.Fatal(err)
	}

	if lowVal.Price <= highVal.Price {
		t.Errorf("low-mileage %.2f must exceed high-mileage %.2f", lowVal.Price, highVal.Price)
	}
}

func TestPredictMissingMileageStaysOnCurve(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	// On-pace mileage and absent mileage must agree: both mean "as expected".
	onPace := 8 * 12000
	withMileage, err := engine.Predict(ctx, domain.ValuationInput{Year: 2018, Make: "Toyota", Model: "Corolla", Mileage: &onPace})
	if err != nil {
		t.Fatal(err)
	}
	withoutMileage, err := engine.Predict(ctx, domain.ValuationInput{Year: 2018, Make: "Toyota", Model: "Corolla"})
	if err != nil {
		t.Fatal(err)
	}

	if withMileage.Price != withoutMileage.Price {
		t.Errorf("on-pace %.2f and absent %.2f mileage must predict the same", withMileage.Price, withoutMileage.Price)
	}
}

func TestPredictFromComparables(t *testing.T) {
	engine := newTestEngine(t, stubComparables{points: []port.ComparablePoint{
		{Year: 2019, ListedPrice: 20000},
		{Year: 2020, ListedPrice: 22000},
	}})
	ctx := context.Background()

	// Tesla has no table entry, so the engine averages the comparables.
	val, err := engine.Predict(ctx, domain.ValuationInput{Year: 2020, Make: "Tesla", Model: "Model 3"})
	if err != nil {
		t.Fatal(err)
	}
	if val.Confidence != domain.ConfidenceComparable {
		t.Errorf("got confidence %v, want comparable", val.Confidence)
	}
	if val.Price != 21000 {
		t.Errorf("got %.2f, want average 21000", val.Price)
	}
}

func TestPredictGenericFallbackIsLowConfidence(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	val, err := engine.Predict(ctx, domain.ValuationInput{Year: 2015, Make: "Zonda", Model: "Unknown"})
	if err != nil {
		t.Fatal(err)
	}
	if val.Confidence != domain.ConfidenceLow {
		t.Errorf("got confidence %v, want low", val.Confidence)
	}
	if val.Price <= 0 {
		t.Errorf("prediction must be positive, got %.2f", val.Price)
	}
}

func TestPredictComparablesErrorFallsBackToCurve(t *testing.T) {
	engine := newTestEngine(t, stubComparables{err: errors.New("store down")})
	ctx := context.Background()

	val, err := engine.Predict(ctx, domain.ValuationInput{Year: 2015, Make: "Tesla", Model: "Model S"})
	if err != nil {
		t.Fatal(err)
	}
	if val.Confidence != domain.ConfidenceLow {
		t.Errorf("got confidence %v, want low after comparables failure", val.Confidence)
	}
}

func TestPredictVeryOldVehicleKeepsPositiveFloor(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	highMileage := 400000
	val, err := engine.Predict(ctx, domain.ValuationInput{Year: 1965, Make: "Ford", Model: "Mustang", Mileage: &highMileage})
	if err != nil {
		t.Fatal(err)
	}
	if val.Price < minPredictedPrice {
		t.Errorf("got %.2f, want at least the %.2f floor", val.Price, minPredictedPrice)
	}
}

func TestRegionFactorAppliesOnTokenMatch(t *testing.T) {
	engine := newTestEngine(t, stubComparables{})
	ctx := context.Background()

	neutral, err := engine.Predict(ctx, domain.ValuationInput{Year: 2019, Make: "Honda", Model: "Accord", Location: "somewhere"})
	if err != nil {
		t.Fatal(err)
	}
	coastal, err := engine.Predict(ctx, domain.ValuationInput{Year: 2019, Make: "Honda", Model: "Accord", Location: "oakland, CA"})
	if err != nil {
		t.Fatal(err)
	}

	if coastal.Price <= neutral.Price {
		t.Errorf("CA factor must raise the prediction: %.2f vs %.2f", coastal.Price, neutral.Price)
	}
}
