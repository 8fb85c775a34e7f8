package service

import (
	"context"
	"errors"
	"fmt"

	"packtrack/internal/core/logger"
	trackingports "packtrack/internal/features/tracking/ports"
	"packtrack/internal/features/urls/ports"

	"go.uber.org/zap"
)

// ErrEmptyURL is returned when an empty URL is added.
var ErrEmptyURL = errors.New("url must not be empty")

// ErrEmptyPattern is returned when removal is attempted without a pattern,
// which would otherwise wipe the whole list.
var ErrEmptyPattern = errors.New("pattern must not be empty")

// URLService manages the tracked URL list. Removing URLs also evicts their
// cache entries, which is the only way a delivered entry ever leaves the
// cache besides an explicit no-cache run.
type URLService struct {
	repo   ports.Repository
	cache  trackingports.ResultCache
	logger *zap.Logger
}

// NewURLService creates a new URLService.
func NewURLService(repo ports.Repository, cache trackingports.ResultCache) *URLService {
	return &URLService{
		repo:   repo,
		cache:  cache,
		logger: logger.Get(),
	}
}

// List returns every tracked URL in registration order.
func (s *URLService) List() ([]string, error) {
	urls, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list urls: %w", err)
	}
	return urls, nil
}

// Add registers a new URL for tracking.
func (s *URLService) Add(url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	if err := s.repo.Add(url); err != nil {
		return fmt.Errorf("service: failed to add url: %w", err)
	}
	s.logger.Info("Tracked URL added", zap.String("url", url))
	return nil
}

// Remove deletes every URL containing the pattern, evicts their cache
// entries and returns the removed URLs.
func (s *URLService) Remove(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	removed, err := s.repo.Remove(pattern)
	if err != nil {
		return nil, fmt.Errorf("service: failed to remove urls: %w", err)
	}

	for _, url := range removed {
		if err := s.cache.Evict(ctx, url); err != nil {
			s.logger.Warn("Failed to evict cache entry for removed url",
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Tracked URLs removed",
		zap.String("pattern", pattern),
		zap.Int("count", len(removed)),
	)
	return removed, nil
}
