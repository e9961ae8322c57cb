package domain

import "testing"

func TestListingIDStable(t *testing.T) {
	a := ListingID("craigslist", "https://sfbay.craigslist.org/cto/1.html")
	b := ListingID("craigslist", "https://sfbay.craigslist.org/cto/1.html")
	if a != b {
		t.Error("same (source, url) must derive the same id")
	}
}

func TestListingIDNormalizesSource(t *testing.T) {
	a := ListingID(" Craigslist ", "https://x/1")
	b := ListingID("craigslist", "https://x/1")
	if a != b {
		t.Error("source casing and padding must not change the id")
	}
}

func TestListingIDDistinguishesURLs(t *testing.T) {
	a := ListingID("craigslist", "https://x/1")
	b := ListingID("craigslist", "https://x/2")
	if a == b {
		t.Error("different urls must derive different ids")
	}
}

func TestUndervaluePercent(t *testing.T) {
	tests := []struct {
		predicted float64
		listed    float64
		want      float64
	}{
		{15000, 12000, 20},
		{15000, 15000, 0},
		{10000, 12000, -20},
	}

	for _, tt := range tests {
		if got := UndervaluePercent(tt.predicted, tt.listed); got != tt.want {
			t.Errorf("UndervaluePercent(%.0f, %.0f) = %.2f; want %.2f", tt.predicted, tt.listed, got, tt.want)
		}
	}
}
