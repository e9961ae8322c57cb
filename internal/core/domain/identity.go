package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// buildIdentityPayload creates a stable string from the fields that identify
// a listing. Only (source, url) participate; everything else may change
// between scrapes of the same offer.
func buildIdentityPayload(source, url string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(source)),
		strings.TrimSpace(url),
	}
	return strings.Join(parts, "|")
}

// ListingID derives the stable identity of a listing from (source, url).
// Re-ingesting the same offer always yields the same ID.
func ListingID(source, url string) string {
	h := sha256.New()
	h.Write([]byte(buildIdentityPayload(source, url)))
	return fmt.Sprintf("%x", h.Sum(nil))
}
