package service

import (
	"context"
	"errors"
	"fmt"

	"packtrack/internal/features/settings/domain"
	"packtrack/internal/features/settings/ports"
)

// ErrInvalidCacheSeconds is returned for negative cache ages.
var ErrInvalidCacheSeconds = errors.New("cache_seconds must not be negative")

// UpdateRequest is a partial settings update; nil fields keep their value.
type UpdateRequest struct {
	Postcode     *string `json:"postcode"`
	Language     *string `json:"language"`
	CacheSeconds *int    `json:"cache_seconds"`
}

// SettingsService manages the user preferences document. Missing stored
// settings fall back to the configured defaults.
type SettingsService struct {
	repo     ports.Repository
	defaults domain.Settings
}

// NewSettingsService creates a new SettingsService with the given defaults.
func NewSettingsService(repo ports.Repository, defaults domain.Settings) *SettingsService {
	return &SettingsService{
		repo:     repo,
		defaults: defaults,
	}
}

// Get returns the stored settings, or the defaults when none are stored.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service: failed to load settings: %w", err)
	}
	if stored == nil {
		return s.defaults, nil
	}
	return *stored, nil
}

// Update applies a partial update on top of the current settings and
// persists the result.
func (s *SettingsService) Update(ctx context.Context, req UpdateRequest) (domain.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if req.Postcode != nil {
		current.Postcode = *req.Postcode
	}
	if req.Language != nil {
		current.Language = *req.Language
	}
	if req.CacheSeconds != nil {
		if *req.CacheSeconds < 0 {
			return domain.Settings{}, ErrInvalidCacheSeconds
		}
		current.CacheSeconds = *req.CacheSeconds
	}

	if err := s.repo.Save(ctx, &current); err != nil {
		return domain.Settings{}, fmt.Errorf("service: failed to save settings: %w", err)
	}
	return current, nil
}

// Reset removes the stored settings, restoring the defaults.
func (s *SettingsService) Reset(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("service: failed to reset settings: %w", err)
	}
	return nil
}
