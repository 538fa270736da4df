package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/domain/repository"
)

// DefaultsService defines the operations on the deployment-wide defaults.
type DefaultsService interface {
	// Get returns the stored defaults, or the hardcoded ones when nothing is stored.
	Get(ctx context.Context) (model.DefaultsConfig, error)

	// Save sanitises and stores every setting except the API key, which is kept.
	Save(ctx context.Context, defaults model.DefaultsConfig) (model.DefaultsConfig, error)

	// SaveAPIKey stores a new API key. An empty key clears the stored one.
	SaveAPIKey(ctx context.Context, apiKey string) error

	// Ensure writes the hardcoded defaults when no record exists yet.
	Ensure(ctx context.Context) error
}

type defaultsService struct {
	repo repository.DefaultsRepository
	now  func() time.Time
}

// NewDefaultsService creates a new DefaultsService instance.
func NewDefaultsService(repo repository.DefaultsRepository) DefaultsService {
	return &defaultsService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *defaultsService) Get(ctx context.Context) (model.DefaultsConfig, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrDefaultsNotFound) {
			return model.NewDefaultsConfig(), nil
		}
		return model.DefaultsConfig{}, fmt.Errorf("get defaults: %w", err)
	}
	return stored.Sanitized(), nil
}

func (s *defaultsService) Save(ctx context.Context, defaults model.DefaultsConfig) (model.DefaultsConfig, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return model.DefaultsConfig{}, err
	}

	next := defaults.Sanitized()
	next.APIKey = current.APIKey
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, &next); err != nil {
		return model.DefaultsConfig{}, fmt.Errorf("save defaults: %w", err)
	}

	slog.Info("defaults saved",
		"max_videos", next.MaxVideos,
		"cache_ttl", next.CacheTTLSeconds,
		"thumb_quality", next.ThumbnailQuality,
		"play", next.PlayMode,
	)
	return next, nil
}

func (s *defaultsService) SaveAPIKey(ctx context.Context, apiKey string) error {
	if apiKey != "" {
		if err := model.ValidateAPIKey(apiKey); err != nil {
			return err
		}
	}

	current, err := s.Get(ctx)
	if err != nil {
		return err
	}

	current.APIKey = apiKey
	current.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, &current); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}

	slog.Info("api key updated", "cleared", apiKey == "")
	return nil
}

func (s *defaultsService) Ensure(ctx context.Context) error {
	d := model.NewDefaultsConfig()
	d.UpdatedAt = s.now().UTC()

	created, err := s.repo.CreateIfMissing(ctx, &d)
	if err != nil {
		return fmt.Errorf("ensure defaults: %w", err)
	}
	if created {
		slog.Info("stored initial defaults")
	}
	return nil
}
