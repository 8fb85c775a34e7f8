package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"packtrack/internal/features/tracking/domain"
	"packtrack/internal/features/tracking/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider implements ports.CarrierProvider with pluggable behavior.
type stubProvider struct {
	carrier  domain.Carrier
	match    string
	fetchRaw func(ctx context.Context, url string, opts domain.FetchOptions) (string, error)
	parse    func(url, raw string) (*domain.Package, error)
	fetches  atomic.Int32
}

func (s *stubProvider) Carrier() domain.Carrier {
	return s.carrier
}

func (s *stubProvider) CanHandle(url string) bool {
	return strings.Contains(url, s.match)
}

func (s *stubProvider) FetchRaw(ctx context.Context, url string, opts domain.FetchOptions) (string, error) {
	s.fetches.Add(1)
	return s.fetchRaw(ctx, url, opts)
}

func (s *stubProvider) Parse(url, raw string) (*domain.Package, error) {
	return s.parse(url, raw)
}

// okProvider tracks any URL containing match and parses the raw payload as
// "<status>|<barcode>".
func okProvider(carrier domain.Carrier, match string) *stubProvider {
	return &stubProvider{
		carrier: carrier,
		match:   match,
		fetchRaw: func(_ context.Context, url string, _ domain.FetchOptions) (string, error) {
			return "IN_TRANSIT|" + url, nil
		},
		parse: func(_, raw string) (*domain.Package, error) {
			status, barcode, found := strings.Cut(raw, "|")
			if !found {
				return nil, fmt.Errorf("bad payload %q", raw)
			}
			return &domain.Package{
				Barcode: barcode,
				Carrier: carrier,
				Status:  domain.PackageStatus(status),
			}, nil
		},
	}
}

// stubCache implements ports.ResultCache in memory.
type stubCache struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	getErr  error
	puts    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*domain.CacheEntry{}}
}

func (c *stubCache) Get(_ context.Context, url string) (*domain.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[url], nil
}

func (c *stubCache) Put(_ context.Context, url string, entry *domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = entry
	c.puts++
	return nil
}

func (c *stubCache) Evict(_ context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
	return nil
}

var _ ports.CarrierProvider = (*stubProvider)(nil)
var _ ports.ResultCache = (*stubCache)(nil)

// TestTrackingService_TrackAll_OrderPreserved verifies one outcome per URL,
// aligned with input order despite concurrent execution.
func TestTrackingService_TrackAll_OrderPreserved(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	svc := NewTrackingService([]ports.CarrierProvider{provider}, newStubCache(), time.Second, 4)

	urls := []string{
		"https://postnl.example/a",
		"https://postnl.example/b",
		"https://postnl.example/c",
		"https://postnl.example/d",
		"https://postnl.example/e",
	}
	outcomes := svc.TrackAll(context.Background(), urls, TrackOptions{})

	require.Len(t, outcomes, len(urls))
	for i, outcome := range outcomes {
		assert.Equal(t, urls[i], outcome.URL)
		require.NotNil(t, outcome.Package)
		assert.Equal(t, urls[i], outcome.Package.Barcode)
	}
}

// TestTrackingService_TrackAll_UnknownCarrier verifies unmatched URLs become
// error outcomes without touching any provider.
func TestTrackingService_TrackAll_UnknownCarrier(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	svc := NewTrackingService([]ports.CarrierProvider{provider}, newStubCache(), time.Second, 4)

	outcomes := svc.TrackAll(context.Background(),
		[]string{"https://unknown.example/x", "https://postnl.example/a"},
		TrackOptions{})

	require.Len(t, outcomes, 2)
	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, domain.ErrKindUnknownCarrier, outcomes[0].Err.Kind)
	assert.Nil(t, outcomes[0].Package)
	require.NotNil(t, outcomes[1].Package)
	assert.Equal(t, int32(1), provider.fetches.Load())
}

// TestTrackingService_ProviderOrder verifies the first matching provider wins.
func TestTrackingService_ProviderOrder(t *testing.T) {
	first := okProvider(domain.CarrierDHL, "example")
	second := okProvider(domain.CarrierGLS, "example")
	svc := NewTrackingService([]ports.CarrierProvider{first, second}, newStubCache(), time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{"https://example/x"}, TrackOptions{})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, domain.CarrierDHL, outcomes[0].Package.Carrier)
	assert.Equal(t, int32(0), second.fetches.Load())
}

// TestTrackingService_Timeout verifies a hanging carrier yields a TIMEOUT
// outcome while its siblings complete normally.
func TestTrackingService_Timeout(t *testing.T) {
	slow := &stubProvider{
		carrier: domain.CarrierDHL,
		match:   "slow",
		fetchRaw: func(ctx context.Context, _ string, _ domain.FetchOptions) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		parse: func(_, _ string) (*domain.Package, error) { return nil, nil },
	}
	fast := okProvider(domain.CarrierPostNL, "fast")
	svc := NewTrackingService([]ports.CarrierProvider{slow, fast}, newStubCache(), 20*time.Millisecond, 4)

	outcomes := svc.TrackAll(context.Background(),
		[]string{"https://slow.example/x", "https://fast.example/y"},
		TrackOptions{})

	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, domain.ErrKindTimeout, outcomes[0].Err.Kind)
	require.NotNil(t, outcomes[1].Package)
}

// TestTrackingService_ParseFailureIsolated verifies a bad payload on one URL
// never affects the others.
func TestTrackingService_ParseFailureIsolated(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	good := provider.parse
	provider.parse = func(url, raw string) (*domain.Package, error) {
		if strings.Contains(url, "broken") {
			return nil, fmt.Errorf("unexpected payload")
		}
		return good(url, raw)
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, newStubCache(), time.Second, 4)

	outcomes := svc.TrackAll(context.Background(),
		[]string{"https://postnl.example/broken", "https://postnl.example/fine"},
		TrackOptions{})

	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, domain.ErrKindParseFailure, outcomes[0].Err.Kind)
	require.NotNil(t, outcomes[1].Package)
}

// TestTrackingService_MalformedURL verifies a URL the provider cannot pick a
// barcode from is classified as a parse failure, not a network one.
func TestTrackingService_MalformedURL(t *testing.T) {
	provider := okProvider(domain.CarrierGLS, "gls")
	provider.fetchRaw = func(_ context.Context, url string, _ domain.FetchOptions) (string, error) {
		return "", fmt.Errorf("%w: no barcode in %s", domain.ErrMalformedURL, url)
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, newStubCache(), time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{"https://gls.example/x"}, TrackOptions{})

	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, domain.ErrKindParseFailure, outcomes[0].Err.Kind)
}

// TestTrackingService_NetworkFailure verifies transport errors map to
// NETWORK_FAILURE.
func TestTrackingService_NetworkFailure(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	provider.fetchRaw = func(_ context.Context, _ string, _ domain.FetchOptions) (string, error) {
		return "", fmt.Errorf("carrier returned status 503")
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, newStubCache(), time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{"https://postnl.example/x"}, TrackOptions{})

	require.NotNil(t, outcomes[0].Err)
	assert.Equal(t, domain.ErrKindNetworkFailure, outcomes[0].Err.Kind)
}

// TestTrackingService_CacheHit verifies a fresh undelivered entry short
// circuits the fetch entirely.
func TestTrackingService_CacheHit(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	url := "https://postnl.example/a"
	cache.entries[url] = &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now().Add(-10 * time.Second),
		Payload:   "IN_TRANSIT|" + url,
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{url}, TrackOptions{MaxAge: 30 * time.Second})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, int32(0), provider.fetches.Load())
	assert.Zero(t, cache.puts)
}

// TestTrackingService_CacheStale verifies an aged undelivered entry triggers
// a fresh fetch and a cache rewrite.
func TestTrackingService_CacheStale(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	url := "https://postnl.example/a"
	cache.entries[url] = &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now().Add(-5 * time.Minute),
		Payload:   "IN_TRANSIT|" + url,
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{url}, TrackOptions{MaxAge: 30 * time.Second})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, int32(1), provider.fetches.Load())
	assert.Equal(t, 1, cache.puts)
}

// TestTrackingService_DeliveredIgnoresMaxAge verifies a delivered entry is
// reused no matter how old it is.
func TestTrackingService_DeliveredIgnoresMaxAge(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	url := "https://postnl.example/a"
	cache.entries[url] = &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now().Add(-365 * 24 * time.Hour),
		Payload:   "DELIVERED|" + url,
		Delivered: true,
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{url}, TrackOptions{MaxAge: 30 * time.Second})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, domain.StatusDelivered, outcomes[0].Package.Status)
	assert.Equal(t, int32(0), provider.fetches.Load())
}

// TestTrackingService_NoCacheForcesFetch verifies no_cache bypasses even a
// delivered entry and still rewrites the cache afterwards.
func TestTrackingService_NoCacheForcesFetch(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	url := "https://postnl.example/a"
	cache.entries[url] = &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now(),
		Payload:   "DELIVERED|" + url,
		Delivered: true,
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{url}, TrackOptions{NoCache: true})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, int32(1), provider.fetches.Load())
	assert.Equal(t, 1, cache.puts)
}

// TestTrackingService_CacheErrorDegrades verifies cache trouble falls back to
// a fresh fetch instead of failing the URL.
func TestTrackingService_CacheErrorDegrades(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	cache.getErr = fmt.Errorf("connection refused")
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{"https://postnl.example/a"}, TrackOptions{})

	require.Nil(t, outcomes[0].Err)
	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, int32(1), provider.fetches.Load())
}

// TestTrackingService_CorruptCachedPayload verifies a cached payload that no
// longer parses degrades to a fresh fetch.
func TestTrackingService_CorruptCachedPayload(t *testing.T) {
	provider := okProvider(domain.CarrierPostNL, "postnl")
	cache := newStubCache()
	url := "https://postnl.example/a"
	cache.entries[url] = &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now(),
		Payload:   "garbage",
	}
	svc := NewTrackingService([]ports.CarrierProvider{provider}, cache, time.Second, 1)

	outcomes := svc.TrackAll(context.Background(), []string{url}, TrackOptions{MaxAge: time.Hour})

	require.NotNil(t, outcomes[0].Package)
	assert.Equal(t, int32(1), provider.fetches.Load())
}

// TestTrackingService_EmptyInput verifies an empty run yields an empty,
// non-nil slice.
func TestTrackingService_EmptyInput(t *testing.T) {
	svc := NewTrackingService(nil, newStubCache(), time.Second, 4)

	outcomes := svc.TrackAll(context.Background(), nil, TrackOptions{})

	assert.NotNil(t, outcomes)
	assert.Empty(t, outcomes)
}
