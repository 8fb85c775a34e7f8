package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"packtrack/internal/core/logger"
	"packtrack/internal/features/tracking/domain"
	"packtrack/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// TrackOptions carries the per-invocation knobs for a tracking run.
type TrackOptions struct {
	// NoCache forces a fresh fetch even for delivered entries.
	NoCache bool
	// MaxAge is how old a cached entry of an undelivered package may be
	// and still be reused. Delivered entries ignore it.
	MaxAge time.Duration
	// Language is the preferred ISO 639 code for carrier responses.
	Language string
	// Postcode is the fallback recipient postcode.
	Postcode string
}

// TrackingService orchestrates tracking runs across multiple carrier
// providers with a shared result cache. It is stateless between runs.
type TrackingService struct {
	providers    []ports.CarrierProvider
	cache        ports.ResultCache
	fetchTimeout time.Duration
	maxInFlight  int
	logger       *zap.Logger
}

// NewTrackingService creates a new TrackingService. Provider order matters:
// the first provider whose CanHandle matches a URL wins.
func NewTrackingService(providers []ports.CarrierProvider, cache ports.ResultCache, fetchTimeout time.Duration, maxInFlight int) *TrackingService {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &TrackingService{
		providers:    providers,
		cache:        cache,
		fetchTimeout: fetchTimeout,
		maxInFlight:  maxInFlight,
		logger:       logger.Get(),
	}
}

// TrackAll tracks every URL concurrently and returns one outcome per URL, in
// input order. A failing URL becomes an error outcome and never aborts its
// siblings.
func (s *TrackingService) TrackAll(ctx context.Context, urls []string, opts TrackOptions) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(urls))

	sem := make(chan struct{}, s.maxInFlight)
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = s.trackOne(ctx, url, opts)
		}(i, url)
	}
	wg.Wait()

	return outcomes
}

// trackOne runs the full pipeline for a single URL: provider lookup, cache
// consultation, fetch, parse, cache write.
func (s *TrackingService) trackOne(ctx context.Context, url string, opts TrackOptions) domain.Outcome {
	provider := s.providerFor(url)
	if provider == nil {
		return errOutcome(url, domain.ErrKindUnknownCarrier, "no registered carrier matches this url")
	}

	if !opts.NoCache {
		if pkg := s.fromCache(ctx, provider, url, opts.MaxAge); pkg != nil {
			return domain.Outcome{URL: url, Package: pkg}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	fetchOpts := domain.FetchOptions{Language: opts.Language, Postcode: opts.Postcode}
	raw, err := provider.FetchRaw(fetchCtx, url, fetchOpts)
	if err != nil {
		return errOutcome(url, classifyFetchError(err), err.Error())
	}

	pkg, err := provider.Parse(url, raw)
	if err != nil {
		return errOutcome(url, domain.ErrKindParseFailure, err.Error())
	}

	entry := &domain.CacheEntry{
		URL:       url,
		FetchedAt: time.Now(),
		Payload:   raw,
		Delivered: pkg.Status == domain.StatusDelivered,
	}
	if err := s.cache.Put(ctx, url, entry); err != nil {
		s.logger.Warn("Failed to store cache entry",
			zap.String("url", url),
			zap.Error(err),
		)
	}

	return domain.Outcome{URL: url, Package: pkg}
}

// providerFor returns the first provider that claims the URL, or nil.
func (s *TrackingService) providerFor(url string) ports.CarrierProvider {
	for _, provider := range s.providers {
		if provider.CanHandle(url) {
			return provider
		}
	}
	return nil
}

// fromCache returns a package rebuilt from the cached raw payload when the
// entry is usable: delivered entries regardless of age, others within
// maxAge. Any cache or re-parse trouble degrades to a miss.
func (s *TrackingService) fromCache(ctx context.Context, provider ports.CarrierProvider, url string, maxAge time.Duration) *domain.Package {
	entry, err := s.cache.Get(ctx, url)
	if err != nil {
		s.logger.Warn("Error loading from cache, getting a fresh value",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil
	}
	if entry == nil {
		s.logger.Debug("No cache entry found", zap.String("url", url))
		return nil
	}

	pkg, err := provider.Parse(url, entry.Payload)
	if err != nil {
		s.logger.Warn("Cached payload no longer parses, getting a fresh value",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil
	}

	age := entry.Age(time.Now())
	if pkg.Status == domain.StatusDelivered {
		s.logger.Debug("Reusing cache entry for delivered package",
			zap.String("url", url),
			zap.String("barcode", pkg.Barcode),
			zap.Duration("age", age),
		)
		return pkg
	}
	if age <= maxAge {
		s.logger.Debug("Reusing cache entry for undelivered package",
			zap.String("url", url),
			zap.String("barcode", pkg.Barcode),
			zap.Duration("age", age),
		)
		return pkg
	}
	return nil
}

// classifyFetchError distinguishes deadline, URL and transport failures.
func classifyFetchError(err error) domain.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrKindTimeout
	}
	if errors.Is(err, domain.ErrMalformedURL) {
		return domain.ErrKindParseFailure
	}
	return domain.ErrKindNetworkFailure
}

func errOutcome(url string, kind domain.ErrorKind, message string) domain.Outcome {
	return domain.Outcome{
		URL: url,
		Err: &domain.TrackingError{URL: url, Kind: kind, Message: message},
	}
}
