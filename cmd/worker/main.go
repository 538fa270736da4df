package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hszk-dev/ytslider/internal/config"
	"github.com/hszk-dev/ytslider/internal/domain/repository"
	"github.com/hszk-dev/ytslider/internal/infrastructure/cache"
	"github.com/hszk-dev/ytslider/internal/infrastructure/postgres"
	"github.com/hszk-dev/ytslider/internal/infrastructure/queue"
	"github.com/hszk-dev/ytslider/internal/infrastructure/storage"
	"github.com/hszk-dev/ytslider/internal/infrastructure/youtube"
	"github.com/hszk-dev/ytslider/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	// The memory backend would warm a cache the API process never reads.
	if cfg.Cache.Backend != config.CacheBackendRedis {
		logger.Warn("worker is not sharing a cache with the API", slog.String("backend", cfg.Cache.Backend))
	}
	playlistCache, err := cache.Open(ctx, cache.BackendConfig{
		Backend:       cfg.Cache.Backend,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		Memory: cache.MemoryConfig{
			Capacity:           cfg.Cache.Capacity,
			NumShards:          cfg.Cache.Shards,
			EvictionPercentage: cfg.Cache.EvictionPercentage,
		},
	})
	if err != nil {
		return err
	}
	defer playlistCache.Close()

	ytClient, err := youtube.NewClient(ctx, youtube.ClientConfig{
		BaseURL:   cfg.YouTube.BaseURL,
		Timeout:   cfg.YouTube.Timeout,
		UserAgent: cfg.YouTube.UserAgent,
	})
	if err != nil {
		return err
	}

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:       cfg.MinIO.Endpoint,
		PublicEndpoint: cfg.MinIO.PublicEndpoint,
		AccessKey:      cfg.MinIO.AccessKey,
		SecretKey:      cfg.MinIO.SecretKey,
		Bucket:         cfg.MinIO.Bucket,
		UseSSL:         cfg.MinIO.UseSSL,
		CreateBucket:   cfg.MinIO.CreateBucket,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	defaultsRepo := postgres.NewDefaultsRepository(pgClient.Pool())
	if err := defaultsRepo.EnsureSchema(ctx); err != nil {
		return err
	}
	defaultsSvc := usecase.NewDefaultsService(defaultsRepo)
	playlistSvc := usecase.NewPlaylistService(playlistCache, ytClient, usecase.DefaultPlaylistServiceConfig())
	warmSvc := usecase.NewWarmService(defaultsSvc, playlistSvc, queueClient, storageClient, usecase.WarmServiceConfig{
		MaxRetries:        cfg.Worker.MaxRetries,
		SnapshotURLExpiry: cfg.Playlist.SnapshotURLExpiry,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming warm tasks")
		err := queueClient.ConsumeWarmTasks(ctx, func(task repository.WarmTask) error {
			wg.Add(1)
			defer wg.Done()

			// In-flight tasks finish on their own deadline even after shutdown starts.
			taskCtx, taskCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Worker.TaskTimeout)
			defer taskCancel()

			return warmSvc.ProcessTask(taskCtx, task)
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight tasks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some tasks may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}
