package constants

// Craigslist search request constants. The cars+trucks category is "cta".
const (
	CraigslistBaseURLTemplate = "https://%s.craigslist.org/search/cta"

	// CraigslistUserAgent – craigslist rejects requests without a
	// browser-ish User-Agent.
	CraigslistUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// CraigslistParamHasPic / CraigslistParamSearchType mirror the query
	// parameters the search UI sends: pictures only, titles only.
	CraigslistParamHasPic     = "1"
	CraigslistParamSearchType = "T"
)
