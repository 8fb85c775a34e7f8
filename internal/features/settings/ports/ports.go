package ports

import (
	"context"

	"packtrack/internal/features/settings/domain"
)

// Repository persists the user settings document.
type Repository interface {
	// Load returns the stored settings, or (nil, nil) when none exist.
	Load(ctx context.Context) (*domain.Settings, error)
	// Save stores the settings, replacing any previous document.
	Save(ctx context.Context, settings *domain.Settings) error
	// Clear removes the stored settings.
	Clear(ctx context.Context) error
}
