package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/infrastructure/metrics"
)

// MemoryConfig holds the sizing of the in-process cache.
type MemoryConfig struct {
	// Capacity is the maximum number of playlists held across all shards.
	Capacity int

	// NumShards spreads keys over independently locked shards.
	NumShards int

	// EvictionPercentage is the share of entries dropped when a shard is full.
	EvictionPercentage int
}

// DefaultMemoryConfig returns sizing suitable for a single API instance.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are usable by sturdyc.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return errors.New("memory cache capacity must be greater than 0")
	}
	if c.NumShards <= 0 {
		return errors.New("memory cache shard count must be greater than 0")
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return errors.New("memory cache eviction percentage must be between 1 and 100")
	}
	return nil
}

// memoryEntry carries its own deadline because sturdyc applies one TTL to
// the whole client while playlists are cached for a per-request duration.
type memoryEntry struct {
	records   []model.VideoRecord
	expiresAt time.Time
}

// MemoryPlaylistCache implements PlaylistCache on top of a sturdyc client.
// It is used when no Redis address is configured.
type MemoryPlaylistCache struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

// NewMemoryPlaylistCache creates an in-process playlist cache.
func NewMemoryPlaylistCache(cfg MemoryConfig) (*MemoryPlaylistCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The client TTL is the longest TTL a playlist may ask for; shorter
	// deadlines are enforced by memoryEntry.
	client := sturdyc.New[memoryEntry](
		cfg.Capacity,
		cfg.NumShards,
		model.MaxCacheTTL,
		cfg.EvictionPercentage,
	)

	return &MemoryPlaylistCache{
		client: client,
		now:    time.Now,
	}, nil
}

// Get returns a copy of the cached records, or nil, nil when absent or expired.
func (c *MemoryPlaylistCache) Get(_ context.Context, key string) ([]model.VideoRecord, error) {
	entry, ok := c.client.Get(key)
	if !ok || !c.now().Before(entry.expiresAt) {
		if ok {
			c.client.Delete(key)
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeMemory).Inc()
		return nil, nil
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeMemory).Inc()
	return model.CloneRecords(entry.records), nil
}

// Set stores a copy of records under key until ttl elapses.
func (c *MemoryPlaylistCache) Set(_ context.Context, key string, records []model.VideoRecord, ttl time.Duration) error {
	if ttl <= 0 {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeMemory).Inc()
		return errors.New("memory cache ttl must be positive")
	}

	c.client.Set(key, memoryEntry{
		records:   model.CloneRecords(records),
		expiresAt: c.now().Add(ttl),
	})

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
	return nil
}

// PurgeByPrefix removes every entry whose key starts with prefix.
func (c *MemoryPlaylistCache) PurgeByPrefix(_ context.Context, prefix string) (int, error) {
	if prefix == "" {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPurge, metrics.CacheStatusError, metrics.CacheTypeMemory).Inc()
		return 0, errors.New("purge prefix must not be empty")
	}

	deleted := 0
	for _, key := range c.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			c.client.Delete(key)
			deleted++
		}
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPurge, metrics.CacheStatusSuccess, metrics.CacheTypeMemory).Inc()
	return deleted, nil
}

var _ PlaylistCache = (*MemoryPlaylistCache)(nil)
