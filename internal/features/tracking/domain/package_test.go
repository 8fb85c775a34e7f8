package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntry_Age(t *testing.T) {
	fetched := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	entry := &CacheEntry{FetchedAt: fetched}

	assert.Equal(t, 90*time.Second, entry.Age(fetched.Add(90*time.Second)))
	assert.Equal(t, time.Duration(0), entry.Age(fetched))
}

func TestTrackingError_Error(t *testing.T) {
	err := &TrackingError{
		URL:     "https://jouw.postnl.nl/track-and-trace/3SABCD000000001",
		Kind:    ErrKindTimeout,
		Message: "context deadline exceeded",
	}

	msg := err.Error()
	assert.Contains(t, msg, "TIMEOUT")
	assert.Contains(t, msg, "context deadline exceeded")
	assert.Contains(t, msg, err.URL)
}
