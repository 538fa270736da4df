package repository

import (
	"context"

	"github.com/hszk-dev/ytslider/internal/domain/model"
)

// DefaultsRepository persists the deployment-wide slider defaults.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type DefaultsRepository interface {
	// Get returns the stored defaults merged over the hardcoded fallbacks.
	// Returns ErrDefaultsNotFound if nothing has been stored yet.
	Get(ctx context.Context) (*model.DefaultsConfig, error)

	// Save replaces the stored defaults, API key included.
	Save(ctx context.Context, defaults *model.DefaultsConfig) error

	// CreateIfMissing stores defaults only when no record exists.
	// Returns true when a record was written.
	CreateIfMissing(ctx context.Context, defaults *model.DefaultsConfig) (bool, error)
}
