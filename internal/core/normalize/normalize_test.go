package normalize

import (
	"errors"
	"testing"
	"time"

	"deal-finder-service/internal/core/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestNormalizeParsesTitle(t *testing.T) {
	raw := domain.RawRecord{
		URL:       "https://sfbay.craigslist.org/cto/1.html",
		Title:     "  2018   Honda Civic LX - clean title, one owner ",
		PriceText: "$12,500",
		Hood:      "(sunnyvale)",
	}

	listing, err := Normalize("craigslist", "sfbay", raw, testNow)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if listing.Year != 2018 {
		t.Errorf("year: got %d, want 2018", listing.Year)
	}
	if listing.Make != "Honda" {
		t.Errorf("make: got %q, want Honda", listing.Make)
	}
	if listing.Model != "Civic LX" {
		t.Errorf("model: got %q, want Civic LX", listing.Model)
	}
	if listing.ListedPrice != 12500 {
		t.Errorf("price: got %.2f, want 12500", listing.ListedPrice)
	}
	if listing.Title != "2018 Honda Civic LX - clean title, one owner" {
		t.Errorf("title not collapsed: %q", listing.Title)
	}
	if listing.Location != "sfbay (sunnyvale)" {
		t.Errorf("location: got %q, want sfbay (sunnyvale)", listing.Location)
	}
	if listing.ID == "" || listing.Source != "craigslist" {
		t.Errorf("identity not filled: id=%q source=%q", listing.ID, listing.Source)
	}
}

func TestNormalizeRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawRecord
	}{
		{"missing url", domain.RawRecord{Title: "2018 Honda Civic", PriceText: "$9000"}},
		{"missing title", domain.RawRecord{URL: "https://x/1", PriceText: "$9000"}},
		{"missing price", domain.RawRecord{URL: "https://x/1", Title: "2018 Honda Civic"}},
		{"zero price", domain.RawRecord{URL: "https://x/1", Title: "2018 Honda Civic", PriceText: "$0"}},
		{"no year in title", domain.RawRecord{URL: "https://x/1", Title: "Honda Civic runs great", PriceText: "$9000"}},
		{"year without make/model", domain.RawRecord{URL: "https://x/1", Title: "2018", PriceText: "$9000"}},
		{"future year", domain.RawRecord{URL: "https://x/1", Title: "2099 Honda Civic", PriceText: "$9000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize("craigslist", "sfbay", tt.raw, testNow)
			if !errors.Is(err, domain.ErrRecordRejected) {
				t.Errorf("got %v, want ErrRecordRejected", err)
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := domain.RawRecord{
		URL:       "https://x/1",
		Title:     "2015 Toyota Corolla LE",
		PriceText: "$8,250",
	}

	first, err := Normalize("craigslist", "austin", raw, testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Normalize("craigslist", "austin", raw, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || first != second {
		t.Error("identical raw records must normalize identically")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$12,500", 12500},
		{"12500 obo", 12500},
		{"$1,200.50", 1200.50},
		{"", 0},
		{"call for price", 0},
	}

	for _, tt := range tests {
		if got := parsePrice(tt.raw); got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseMileage(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		text string
		want *int
	}{
		{"85,000 miles, clean", intPtr(85000)},
		{"85k miles", intPtr(85000)},
		{"120000 mi", intPtr(120000)},
		{"no odometer info", nil},
		{"9,999,999 miles", nil},
	}

	for _, tt := range tests {
		got := parseMileage(tt.text)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseMileage(%q) = %d; want nil", tt.text, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parseMileage(%q) = nil; want %d", tt.text, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("parseMileage(%q) = %d; want %d", tt.text, *got, *tt.want)
		}
	}
}

func TestNormalizeUsesPostedAtWhenPresent(t *testing.T) {
	postedAt := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	raw := domain.RawRecord{
		URL:       "https://x/1",
		Title:     "2019 Mazda 3 hatchback",
		PriceText: "$14,000",
		PostedAt:  &postedAt,
	}

	listing, err := Normalize("craigslist", "seattle", raw, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !listing.PostedAt.Equal(postedAt) {
		t.Errorf("posted_at: got %v, want %v", listing.PostedAt, postedAt)
	}
	if !listing.CreatedAt.Equal(testNow) {
		t.Errorf("created_at: got %v, want ingestion time %v", listing.CreatedAt, testNow)
	}
}
