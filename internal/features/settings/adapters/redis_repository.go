package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"packtrack/internal/core/cache"
	"packtrack/internal/features/settings/domain"
)

const settingsCacheKey = "settings"

// RedisSettingsRepository implements ports.Repository using the cache store.
type RedisSettingsRepository struct {
	cache cache.Cache
}

// NewRedisSettingsRepository creates a new RedisSettingsRepository.
func NewRedisSettingsRepository(c cache.Cache) *RedisSettingsRepository {
	return &RedisSettingsRepository{
		cache: c,
	}
}

// Load retrieves the settings document, or (nil, nil) when none exist.
func (r *RedisSettingsRepository) Load(ctx context.Context) (*domain.Settings, error) {
	data, err := r.cache.Get(ctx, settingsCacheKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &settings, nil
}

// Save stores the settings document without expiry.
func (r *RedisSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := r.cache.Set(ctx, settingsCacheKey, data, 0); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Clear removes the settings document.
func (r *RedisSettingsRepository) Clear(ctx context.Context) error {
	if err := r.cache.Delete(ctx, settingsCacheKey); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}
