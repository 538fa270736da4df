package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hszk-dev/ytslider/internal/api/handler"
	"github.com/hszk-dev/ytslider/internal/config"
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
	ctx := context.Background()

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

	defaultsRepo := postgres.NewDefaultsRepository(pgClient.Pool())
	if err := defaultsRepo.EnsureSchema(ctx); err != nil {
		return err
	}
	defaultsSvc := usecase.NewDefaultsService(defaultsRepo)
	if err := defaultsSvc.Ensure(ctx); err != nil {
		return fmt.Errorf("failed to initialise defaults: %w", err)
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
	logger.Info("playlist cache ready", slog.String("backend", playlistCache.Name))

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

	playlistSvc := usecase.NewPlaylistService(playlistCache, ytClient, usecase.PlaylistServiceConfig{
		CoalesceFetches: cfg.Playlist.CoalesceFetches,
	})
	warmSvc := usecase.NewWarmService(defaultsSvc, playlistSvc, queueClient, storageClient, usecase.WarmServiceConfig{
		MaxRetries:        cfg.Worker.MaxRetries,
		SnapshotURLExpiry: cfg.Playlist.SnapshotURLExpiry,
	})

	if cfg.Cache.PurgeOnStart {
		n, err := playlistSvc.PurgeCache(ctx)
		if err != nil {
			logger.Warn("failed to purge playlist cache on start", slog.String("error", err.Error()))
		} else {
			logger.Info("purged playlist cache on start", slog.Int("purged", n))
		}
	}

	if cfg.Admin.Token == "" {
		logger.Warn("ADMIN_TOKEN is empty, admin routes are disabled")
	}

	r := setupRouter(routerDeps{
		logger:         logger,
		adminToken:     cfg.Admin.Token,
		rateLimit:      cfg.RateLimit,
		snapshotExpiry: cfg.Playlist.SnapshotURLExpiry,
		defaults:       defaultsSvc,
		playlists:      playlistSvc,
		warm:           warmSvc,
		readiness: map[string]handler.Pinger{
			"postgres": pgClient,
			"cache":    playlistCache,
			"minio":    storageClient,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
