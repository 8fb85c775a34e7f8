package domain

// Settings are the user preferences applied to every tracking run.
type Settings struct {
	// Postcode is the default recipient postcode for carriers that need
	// one when the tracking URL does not embed it.
	Postcode string `json:"postcode"`
	// Language is the preferred ISO 639 code for carrier responses.
	Language string `json:"language"`
	// CacheSeconds is the default max age for reusing cached entries of
	// undelivered packages.
	CacheSeconds int `json:"cache_seconds"`
}
