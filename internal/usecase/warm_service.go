package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/domain/repository"
	"github.com/hszk-dev/ytslider/internal/infrastructure/metrics"
)

const (
	// DefaultMaxRetries is the default number of republishes before a warm task is dropped.
	DefaultMaxRetries = 3

	snapshotPrefix      = "snapshots"
	snapshotContentType = "application/json"
)

// WarmServiceConfig holds configuration for WarmService.
type WarmServiceConfig struct {
	// MaxRetries is the number of retries a failing fetch gets before the task is dropped.
	MaxRetries int
	// SnapshotURLExpiry is how long a presigned snapshot link stays valid.
	SnapshotURLExpiry time.Duration
}

// DefaultWarmServiceConfig returns the default configuration.
func DefaultWarmServiceConfig() WarmServiceConfig {
	return WarmServiceConfig{
		MaxRetries:        DefaultMaxRetries,
		SnapshotURLExpiry: 15 * time.Minute,
	}
}

// WarmService refreshes playlists out of band and publishes JSON snapshots.
type WarmService interface {
	// Enqueue validates params and publishes a warm task.
	// An api_key param is not forwarded; the worker uses the stored key.
	Enqueue(ctx context.Context, params Params) (uuid.UUID, error)

	// ProcessTask handles a warm task from the message queue.
	// Returns nil on success or permanent failure.
	// Returns error for transient failures that should trigger a retry.
	ProcessTask(ctx context.Context, task repository.WarmTask) error

	// SnapshotURL returns a presigned link to the latest snapshot of query.
	// Returns repository.ErrObjectNotFound when no snapshot exists.
	SnapshotURL(ctx context.Context, query model.PlaylistQuery) (string, error)
}

type warmService struct {
	defaults  DefaultsService
	playlists PlaylistService
	queue     repository.MessageQueue
	storage   repository.ObjectStorage

	maxRetries        int
	snapshotURLExpiry time.Duration
	now               func() time.Time
}

// NewWarmService creates a new WarmService instance.
func NewWarmService(
	defaults DefaultsService,
	playlists PlaylistService,
	queue repository.MessageQueue,
	storage repository.ObjectStorage,
	cfg WarmServiceConfig,
) WarmService {
	return &warmService{
		defaults:          defaults,
		playlists:         playlists,
		queue:             queue,
		storage:           storage,
		maxRetries:        cfg.MaxRetries,
		snapshotURLExpiry: cfg.SnapshotURLExpiry,
		now:               time.Now,
	}
}

// SnapshotKey returns the object key of the snapshot for a cache key.
func SnapshotKey(cacheKey string) string {
	return path.Join(snapshotPrefix, cacheKey+".json")
}

func (s *warmService) Enqueue(ctx context.Context, params Params) (uuid.UUID, error) {
	forwarded := maps.Clone(params)
	if forwarded == nil {
		forwarded = Params{}
	}
	delete(forwarded, "api_key")

	defaults, err := s.defaults.Get(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	resolved := ResolveQuery(forwarded, defaults)
	if err := resolved.Err(); err != nil {
		return uuid.Nil, err
	}

	task := repository.WarmTask{
		TaskID:      uuid.New(),
		Params:      forwarded,
		RequestedAt: s.now().UTC(),
	}
	if err := s.queue.PublishWarmTask(ctx, task); err != nil {
		return uuid.Nil, fmt.Errorf("publish warm task: %w", err)
	}

	slog.Info("warm task enqueued",
		"task_id", task.TaskID,
		"playlist_id", resolved.Query.PlaylistID,
	)
	return task.TaskID, nil
}

func (s *warmService) ProcessTask(ctx context.Context, task repository.WarmTask) error {
	defaults, err := s.defaults.Get(ctx)
	if err != nil {
		metrics.WarmTasksTotal.WithLabelValues(metrics.WarmRetry).Inc()
		return fmt.Errorf("load defaults: %w", err)
	}

	resolved := ResolveQuery(task.Params, defaults)
	if err := resolved.Err(); err != nil {
		s.drop(task, err)
		return nil
	}
	query := resolved.Query

	records, err := s.playlists.Refresh(ctx, query)
	switch {
	case err == nil:
	case errors.Is(err, ErrFetchFailure):
		if task.RetryCount >= s.maxRetries {
			s.drop(task, err)
			return nil
		}
		metrics.WarmTasksTotal.WithLabelValues(metrics.WarmRetry).Inc()
		return err
	default:
		s.drop(task, err)
		return nil
	}

	key := CacheKeyFor(query)
	if err := s.uploadSnapshot(ctx, query, key, records); err != nil {
		if task.RetryCount >= s.maxRetries {
			s.drop(task, err)
			return nil
		}
		metrics.WarmTasksTotal.WithLabelValues(metrics.WarmRetry).Inc()
		return err
	}

	metrics.WarmTasksTotal.WithLabelValues(metrics.WarmRefreshed).Inc()
	slog.Info("playlist refreshed",
		"task_id", task.TaskID,
		"playlist_id", query.PlaylistID,
		"videos", len(records),
		"snapshot", SnapshotKey(key),
	)
	return nil
}

func (s *warmService) drop(task repository.WarmTask, reason error) {
	metrics.WarmTasksTotal.WithLabelValues(metrics.WarmDropped).Inc()
	slog.Warn("dropping warm task",
		"task_id", task.TaskID,
		"retry_count", task.RetryCount,
		"error", reason,
	)
}

func (s *warmService) uploadSnapshot(ctx context.Context, query model.PlaylistQuery, key string, records []model.VideoRecord) error {
	snap := snapshotJSON{
		PlaylistID: query.PlaylistID,
		CacheKey:   key,
		FetchedAt:  s.now().UTC(),
		Videos:     make([]snapshotVideoJSON, len(records)),
	}
	for i, r := range records {
		snap.Videos[i] = snapshotVideoJSON{
			VideoID:      r.VideoID,
			Title:        r.Title,
			Description:  r.Description,
			ThumbnailURL: r.ThumbnailURL,
			PublishedAt:  r.PublishedAt,
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.storage.Upload(ctx, SnapshotKey(key), bytes.NewReader(body), snapshotContentType); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	return nil
}

func (s *warmService) SnapshotURL(ctx context.Context, query model.PlaylistQuery) (string, error) {
	if err := query.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	objectKey := SnapshotKey(CacheKeyFor(query))
	exists, err := s.storage.Exists(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("check snapshot: %w", err)
	}
	if !exists {
		return "", repository.ErrObjectNotFound
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, objectKey, s.snapshotURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign snapshot: %w", err)
	}
	return url, nil
}

// snapshotJSON is the document written to object storage after a refresh.
type snapshotJSON struct {
	PlaylistID string              `json:"playlist_id"`
	CacheKey   string              `json:"cache_key"`
	FetchedAt  time.Time           `json:"fetched_at"`
	Videos     []snapshotVideoJSON `json:"videos"`
}

type snapshotVideoJSON struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublishedAt  string `json:"published_at"`
}
