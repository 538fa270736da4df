package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/ytslider/internal/domain/model"
)

// PlaylistCache defines the interface for caching normalised playlist records.
// Implementations should handle serialization/deserialization transparently
// and must hand out copies, never cache-owned slices.
type PlaylistCache interface {
	// Get retrieves the records stored under key.
	// Returns nil, nil if the key is absent or expired (cache miss).
	Get(ctx context.Context, key string) ([]model.VideoRecord, error)

	// Set replaces the records stored under key with the specified TTL.
	Set(ctx context.Context, key string, records []model.VideoRecord, ttl time.Duration) error

	// PurgeByPrefix removes every entry whose key starts with prefix and
	// returns how many were removed.
	PurgeByPrefix(ctx context.Context, prefix string) (int, error)
}
