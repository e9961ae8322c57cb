// Package normalize converts raw source records into canonical listings.
// Normalization is a pure function of its input: identical raw records always
// yield identical listings (apart from the supplied ingestion time).
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"deal-finder-service/internal/core/domain"
)

var titleCaser = cases.Title(language.English)

var (
	// priceRegexp captures numeric price values.
	priceRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// yearRegexp captures a plausible 4-digit model year token.
	yearRegexp = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	// mileageRegexp captures "85,000 miles", "85000 mi", "85k miles".
	mileageRegexp = regexp.MustCompile(`(?i)\b([\d,]+)\s*(k)?\s*(?:miles|mi)\b`)
)

// Normalize converts one RawRecord into a canonical Listing. Records that
// cannot yield year, make, model and a positive listed price are rejected
// with domain.ErrRecordRejected; downstream valuation assumes those four are
// present. Valuation fields are left zero — the orchestrator fills them in.
func Normalize(source, city string, raw domain.RawRecord, now time.Time) (domain.Listing, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return domain.Listing{}, fmt.Errorf("%w: missing url", domain.ErrRecordRejected)
	}

	title := collapseWhitespace(raw.Title)
	if title == "" {
		return domain.Listing{}, fmt.Errorf("%w: missing title (url: %s)", domain.ErrRecordRejected, url)
	}

	price := parsePrice(raw.PriceText)
	if price <= 0 {
		return domain.Listing{}, fmt.Errorf("%w: no positive listed price (url: %s)", domain.ErrRecordRejected, url)
	}

	year, mk, model := parseTitle(title, now)
	if year == 0 || mk == "" || model == "" {
		return domain.Listing{}, fmt.Errorf("%w: could not extract year/make/model from title %q", domain.ErrRecordRejected, title)
	}

	description := collapseWhitespace(raw.Description)
	if description == "" {
		description = title
	}

	postedAt := now
	if raw.PostedAt != nil && !raw.PostedAt.IsZero() {
		postedAt = raw.PostedAt.UTC()
	}

	return domain.Listing{
		ID:          domain.ListingID(source, url),
		Source:      source,
		URL:         url,
		Title:       title,
		Description: description,
		ListedPrice: price,
		Year:        year,
		Make:        mk,
		Model:       model,
		Mileage:     parseMileage(title + " " + description),
		Location:    buildLocation(city, raw.Hood),
		PostedAt:    postedAt,
		CreatedAt:   now.UTC(),
	}, nil
}

// parseTitle extracts (year, make, model) from a listing title like
// "2018 Honda Civic LX - clean title". The year token anchors the parse;
// make is the following token, model the rest up to the first separator.
func parseTitle(title string, now time.Time) (int, string, string) {
	loc := yearRegexp.FindStringIndex(title)
	if loc == nil {
		return 0, "", ""
	}

	year, _ := strconv.Atoi(title[loc[0]:loc[1]])
	if year < 1900 || year > now.Year()+1 {
		return 0, "", ""
	}

	rest := title[loc[1]:]
	for _, sep := range []string{" - ", " – ", "(", ",", "|", "*"} {
		if idx := strings.Index(rest, sep); idx >= 0 {
			rest = rest[:idx]
		}
	}

	tokens := strings.Fields(rest)
	if len(tokens) < 2 {
		return 0, "", ""
	}

	mk := titleCaser.String(strings.ToLower(tokens[0]))
	model := strings.Join(tokens[1:], " ")
	return year, mk, model
}

// parsePrice extracts the first numeric value from a price string like
// "$12,500" or "12500 obo". Returns 0 when nothing numeric is present.
func parsePrice(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseMileage extracts an odometer reading from free text. Absent or
// implausible mileage yields nil; valuation degrades gracefully without it.
func parseMileage(text string) *int {
	match := mileageRegexp.FindStringSubmatch(text)
	if len(match) < 2 {
		return nil
	}
	digits := strings.ReplaceAll(match[1], ",", "")
	miles, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	if match[2] != "" {
		miles *= 1000
	}
	if miles < 0 || miles > 1_000_000 {
		return nil
	}
	return &miles
}

// buildLocation mirrors the "city (hood)" convention of the sources.
func buildLocation(city, hood string) string {
	city = collapseWhitespace(city)
	hood = strings.Trim(collapseWhitespace(hood), "()")
	if hood == "" {
		return city
	}
	if city == "" {
		return hood
	}
	return fmt.Sprintf("%s (%s)", city, hood)
}

// collapseWhitespace strips leading/trailing space and collapses internal runs.
func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
