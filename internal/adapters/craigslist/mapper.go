package craigslist

import (
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"deal-finder-service/internal/core/domain"
)

// postedAtLayouts are the timestamp formats observed in the result rows'
// time elements.
var postedAtLayouts = []string{
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// mapResultRow converts one search result row into a RawRecord. A row without
// a title link is malformed and reported as not-ok; everything else stays
// free text for the normalizer to deal with.
func mapResultRow(e *colly.HTMLElement) (domain.RawRecord, bool) {
	title := strings.TrimSpace(e.ChildText("a.result-title"))
	href := strings.TrimSpace(e.ChildAttr("a.result-title", "href"))
	if title == "" || href == "" {
		return domain.RawRecord{}, false
	}

	record := domain.RawRecord{
		URL:       e.Request.AbsoluteURL(href),
		Title:     title,
		PriceText: strings.TrimSpace(e.ChildText("span.result-price")),
		Hood:      strings.Trim(strings.TrimSpace(e.ChildText("span.result-hood")), "()"),
	}

	if datetime := e.ChildAttr("time.result-date", "datetime"); datetime != "" {
		for _, layout := range postedAtLayouts {
			if t, err := time.Parse(layout, datetime); err == nil {
				utc := t.UTC()
				record.PostedAt = &utc
				break
			}
		}
	}

	return record, true
}
