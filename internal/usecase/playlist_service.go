package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"google.golang.org/api/youtube/v3"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/infrastructure/cache"
	"github.com/hszk-dev/ytslider/internal/infrastructure/metrics"
)

// PlaylistFetcher retrieves one page of playlist items from YouTube.
type PlaylistFetcher interface {
	FetchPlaylistItems(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error)
}

// PlaylistService defines the cache-backed playlist pipeline.
type PlaylistService interface {
	// GetVideos serves the playlist from cache, fetching and caching it on a miss.
	// Errors wrap ErrInvalidConfig, ErrFetchFailure or ErrEmptyResult.
	GetVideos(ctx context.Context, query model.PlaylistQuery) ([]model.VideoRecord, error)

	// Refresh fetches the playlist without reading the cache and stores the
	// result. Used by the warm worker.
	Refresh(ctx context.Context, query model.PlaylistQuery) ([]model.VideoRecord, error)

	// PurgeCache removes every playlist entry and returns how many were removed.
	PurgeCache(ctx context.Context) (int, error)
}

// PlaylistServiceConfig holds configuration for PlaylistService.
type PlaylistServiceConfig struct {
	// CoalesceFetches shares one cache lookup and fetch between concurrent
	// requests for the same cache key.
	CoalesceFetches bool
}

// DefaultPlaylistServiceConfig returns the default configuration.
func DefaultPlaylistServiceConfig() PlaylistServiceConfig {
	return PlaylistServiceConfig{
		CoalesceFetches: false,
	}
}

type playlistService struct {
	cache   cache.PlaylistCache
	fetcher PlaylistFetcher
	sfGroup singleflight.Group

	coalesce bool
}

// NewPlaylistService creates a new PlaylistService instance.
func NewPlaylistService(
	playlistCache cache.PlaylistCache,
	fetcher PlaylistFetcher,
	cfg PlaylistServiceConfig,
) PlaylistService {
	return &playlistService{
		cache:    playlistCache,
		fetcher:  fetcher,
		coalesce: cfg.CoalesceFetches,
	}
}

// loadResult is what a (possibly shared) pipeline run produces.
type loadResult struct {
	records []model.VideoRecord
	source  string
}

// GetVideos implements the cache-aside pattern around the YouTube fetch.
func (s *playlistService) GetVideos(ctx context.Context, query model.PlaylistQuery) ([]model.VideoRecord, error) {
	if err := query.Validate(); err != nil {
		recordResult(KindInvalidConfig, metrics.SourceNone)
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	key := CacheKeyFor(query)

	var (
		res *loadResult
		err error
	)
	if s.coalesce {
		res, err = s.loadShared(ctx, query, key)
	} else {
		res, err = s.load(ctx, query, key)
	}
	if err != nil {
		source := metrics.SourceNone
		if res != nil {
			source = res.source
		}
		recordResult(Kind(err), source)
		return nil, err
	}

	recordResult(KindSuccess, res.source)
	return withThumbnailQuality(res.records, query.ThumbnailQuality), nil
}

// loadShared runs load through singleflight so concurrent misses on the same
// key cause a single fetch.
func (s *playlistService) loadShared(ctx context.Context, query model.PlaylistQuery, key string) (*loadResult, error) {
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.load(ctx, query, key)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	res, _ := result.(*loadResult)
	return res, err
}

// load tries the cache first and falls back to the API. On error the result
// is non-nil only when the API was called, and carries that source.
func (s *playlistService) load(ctx context.Context, query model.PlaylistQuery, key string) (*loadResult, error) {
	records, err := s.cache.Get(ctx, key)
	if err != nil {
		// Log cache error but continue to the API
		slog.Warn("cache get failed, falling back to YouTube",
			"playlist_id", query.PlaylistID,
			"cache_key", key,
			"error", err,
		)
	}

	if len(records) > 0 {
		return &loadResult{records: records, source: metrics.SourceCache}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	records, err = s.fetchAndStore(ctx, query, key)
	if err != nil {
		return &loadResult{source: metrics.SourceAPI}, err
	}
	return &loadResult{records: records, source: metrics.SourceAPI}, nil
}

// Refresh bypasses the cache read and overwrites the entry on success.
func (s *playlistService) Refresh(ctx context.Context, query model.PlaylistQuery) ([]model.VideoRecord, error) {
	if err := query.Validate(); err != nil {
		recordResult(KindInvalidConfig, metrics.SourceNone)
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	records, err := s.fetchAndStore(ctx, query, CacheKeyFor(query))
	if err != nil {
		recordResult(Kind(err), metrics.SourceAPI)
		return nil, err
	}

	recordResult(KindSuccess, metrics.SourceAPI)
	return records, nil
}

// fetchAndStore fetches, normalises and caches a playlist.
// Empty results are never cached.
func (s *playlistService) fetchAndStore(ctx context.Context, query model.PlaylistQuery, key string) ([]model.VideoRecord, error) {
	start := time.Now()
	resp, err := s.fetcher.FetchPlaylistItems(ctx, query.PlaylistID, query.MaxResults, query.APIKey)
	if err != nil {
		metrics.YouTubeFetchDuration.WithLabelValues(metrics.FetchStatusError).Observe(time.Since(start).Seconds())
		slog.Warn("youtube fetch failed",
			"playlist_id", query.PlaylistID,
			"cache_key", key,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	metrics.YouTubeFetchDuration.WithLabelValues(metrics.FetchStatusSuccess).Observe(time.Since(start).Seconds())

	records := NormalizePlaylistItems(resp, query.ThumbnailQuality)
	if len(records) == 0 {
		slog.Warn("playlist returned no valid videos",
			"playlist_id", query.PlaylistID,
			"items", len(resp.Items),
		)
		return nil, ErrEmptyResult
	}

	if err := s.cache.Set(ctx, key, records, query.CacheTTL); err != nil {
		slog.Warn("failed to cache playlist",
			"playlist_id", query.PlaylistID,
			"cache_key", key,
			"error", err,
		)
	}

	return records, nil
}

// PurgeCache removes every key in the playlist namespace.
func (s *playlistService) PurgeCache(ctx context.Context) (int, error) {
	n, err := s.cache.PurgeByPrefix(ctx, model.CacheKeyPrefix)
	if err != nil {
		return n, fmt.Errorf("purge playlist cache: %w", err)
	}
	slog.Info("playlist cache purged", "deleted", n)
	return n, nil
}

// withThumbnailQuality returns copies of records with the thumbnail chosen for q.
// Shared singleflight results and cache-owned slices are never handed out.
func withThumbnailQuality(records []model.VideoRecord, q model.ThumbnailQuality) []model.VideoRecord {
	out := make([]model.VideoRecord, len(records))
	for i, r := range records {
		out[i] = r.WithThumbnailQuality(q)
	}
	return out
}

func recordResult(kind ResultKind, source string) {
	metrics.PlaylistRequestsTotal.WithLabelValues(string(kind), source).Inc()
}
