package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/infrastructure/metrics"
)

const (
	// scanBatchSize is the COUNT hint for SCAN and the DEL batch size during purges.
	scanBatchSize = 100
)

// recordJSON is the JSON representation of a VideoRecord for caching.
// Using explicit struct avoids coupling to domain model's JSON tags.
type recordJSON struct {
	VideoID      string            `json:"video_id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ThumbnailURL string            `json:"thumbnail_url"`
	Thumbnails   map[string]string `json:"thumbnails,omitempty"`
	PublishedAt  string            `json:"published_at"`
}

// RedisPlaylistCache implements PlaylistCache using Redis as the backing store.
type RedisPlaylistCache struct {
	client *redis.Client
}

// NewRedisPlaylistCache creates a new Redis-backed playlist cache.
func NewRedisPlaylistCache(client *redis.Client) *RedisPlaylistCache {
	return &RedisPlaylistCache{
		client: client,
	}
}

// Get retrieves playlist records from Redis.
// Returns nil, nil on cache miss; Redis expiry removes stale entries.
func (c *RedisPlaylistCache) Get(ctx context.Context, key string) ([]model.VideoRecord, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTypeRedis).Inc()
			return nil, nil // Cache miss
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	records, err := deserializeRecords(data)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return nil, fmt.Errorf("deserialize records: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTypeRedis).Inc()
	return records, nil
}

// Set stores playlist records in Redis with the specified TTL.
func (c *RedisPlaylistCache) Set(ctx context.Context, key string, records []model.VideoRecord, ttl time.Duration) error {
	data, err := serializeRecords(records)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return fmt.Errorf("serialize records: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return nil
}

// PurgeByPrefix deletes every key starting with prefix.
// Keys are discovered with SCAN so the server is never blocked by KEYS.
func (c *RedisPlaylistCache) PurgeByPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("purge prefix must not be empty")
	}

	// Keys are collected before any DEL; deleting under a moving cursor
	// skips keys on some servers.
	var keys []string
	iter := c.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPurge, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
		return 0, fmt.Errorf("redis scan: %w", err)
	}

	var deleted int
	for batch := range slices.Chunk(keys, scanBatchSize) {
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPurge, metrics.CacheStatusError, metrics.CacheTypeRedis).Inc()
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += int(n)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPurge, metrics.CacheStatusSuccess, metrics.CacheTypeRedis).Inc()
	return deleted, nil
}

// escapeGlob escapes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// serializeRecords converts records to JSON bytes.
func serializeRecords(records []model.VideoRecord) ([]byte, error) {
	out := make([]recordJSON, len(records))
	for i, r := range records {
		var thumbs map[string]string
		if len(r.Thumbnails) > 0 {
			thumbs = make(map[string]string, len(r.Thumbnails))
			for q, url := range r.Thumbnails {
				thumbs[string(q)] = url
			}
		}
		out[i] = recordJSON{
			VideoID:      r.VideoID,
			Title:        r.Title,
			Description:  r.Description,
			ThumbnailURL: r.ThumbnailURL,
			Thumbnails:   thumbs,
			PublishedAt:  r.PublishedAt,
		}
	}
	return json.Marshal(out)
}

// deserializeRecords converts JSON bytes to records.
func deserializeRecords(data []byte) ([]model.VideoRecord, error) {
	var in []recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	records := make([]model.VideoRecord, len(in))
	for i, r := range in {
		var thumbs model.Thumbnails
		if len(r.Thumbnails) > 0 {
			thumbs = make(model.Thumbnails, len(r.Thumbnails))
			for q, url := range r.Thumbnails {
				thumbs[model.ThumbnailQuality(q)] = url
			}
		}
		records[i] = model.VideoRecord{
			VideoID:      r.VideoID,
			Title:        r.Title,
			Description:  r.Description,
			ThumbnailURL: r.ThumbnailURL,
			Thumbnails:   thumbs,
			PublishedAt:  r.PublishedAt,
		}
	}
	return records, nil
}

// Compile-time verification that RedisPlaylistCache implements PlaylistCache.
var _ PlaylistCache = (*RedisPlaylistCache)(nil)
