package usecase

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/hszk-dev/ytslider/internal/domain/model"
)

// DeriveCacheKey returns the namespaced cache key for one playlist render.
// The digest covers the playlist ID, result count and TTL, separated so that
// ("PL..1", 23) and ("PL..12", 3) never collide.
func DeriveCacheKey(playlistID string, maxResults, ttlSeconds int) string {
	d := xxhash.New()
	_, _ = d.WriteString(playlistID)
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(maxResults))
	_, _ = d.WriteString("|")
	_, _ = d.WriteString(strconv.Itoa(ttlSeconds))
	return fmt.Sprintf("%s%016x", model.CacheKeyPrefix, d.Sum64())
}

// CacheKeyFor derives the key of a validated query.
func CacheKeyFor(q model.PlaylistQuery) string {
	return DeriveCacheKey(q.PlaylistID, q.MaxResults, q.CacheTTLSeconds())
}
