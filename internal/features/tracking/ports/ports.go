package ports

import (
	"context"

	"packtrack/internal/features/tracking/domain"
)

// CarrierProvider defines the interface for carrier tracking implementations.
// Fetching and parsing are split so that raw payloads can be cached and
// re-parsed on later runs without a network call.
type CarrierProvider interface {
	// Carrier returns the identifier of the courier this provider handles.
	Carrier() domain.Carrier
	// CanHandle returns true if this provider understands the given
	// tracking URL. Matching is pattern based; first match wins.
	CanHandle(url string) bool
	// FetchRaw performs a single bounded request against the carrier API
	// for the given tracking URL and returns the raw response body.
	FetchRaw(ctx context.Context, url string, opts domain.FetchOptions) (string, error)
	// Parse turns a raw response into a Package. The originating URL is
	// passed so a barcode can be recovered from it when the payload does
	// not contain one. Parse must return an error for malformed input,
	// never panic.
	Parse(url, raw string) (*domain.Package, error)
}

// ResultCache persists the most recent fetch result per tracking URL.
// Age and delivery policy are evaluated by the caller, not the cache.
type ResultCache interface {
	// Get returns the stored entry for the URL, or (nil, nil) when absent.
	Get(ctx context.Context, url string) (*domain.CacheEntry, error)
	// Put overwrites any existing entry for the URL (latest wins).
	Put(ctx context.Context, url string, entry *domain.CacheEntry) error
	// Evict removes the entry for the URL, if any.
	Evict(ctx context.Context, url string) error
}
