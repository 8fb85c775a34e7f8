package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"packtrack/internal/core/cache"
	"packtrack/internal/features/tracking/domain"
)

// resultKeyPrefix namespaces tracking entries in the shared cache store.
const resultKeyPrefix = "tracking:"

// RedisResultCache implements ports.ResultCache on the core cache store.
// Entries are stored without a store-level TTL: delivered entries must
// outlive any max-age, so age policy is evaluated by the tracker instead.
type RedisResultCache struct {
	cache cache.Cache
}

// NewRedisResultCache creates a new RedisResultCache.
func NewRedisResultCache(c cache.Cache) *RedisResultCache {
	return &RedisResultCache{
		cache: c,
	}
}

// Get retrieves the stored entry for the URL, or (nil, nil) when absent.
func (r *RedisResultCache) Get(ctx context.Context, url string) (*domain.CacheEntry, error) {
	data, err := r.cache.Get(ctx, resultKeyPrefix+url)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Put overwrites the entry for the URL (latest wins, no history).
func (r *RedisResultCache) Put(ctx context.Context, url string, entry *domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := r.cache.Set(ctx, resultKeyPrefix+url, data, 0); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Evict removes the entry for the URL.
func (r *RedisResultCache) Evict(ctx context.Context, url string) error {
	if err := r.cache.Delete(ctx, resultKeyPrefix+url); err != nil {
		return fmt.Errorf("failed to evict cache entry: %w", err)
	}
	return nil
}
