package main

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/ytslider/internal/api/handler"
	"github.com/hszk-dev/ytslider/internal/api/middleware"
	"github.com/hszk-dev/ytslider/internal/config"
	"github.com/hszk-dev/ytslider/internal/usecase"
)

type routerDeps struct {
	logger         *slog.Logger
	adminToken     string
	rateLimit      config.RateLimitConfig
	snapshotExpiry time.Duration
	defaults       usecase.DefaultsService
	playlists      usecase.PlaylistService
	warm           usecase.WarmService
	readiness      map[string]handler.Pinger
}

func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(d.readiness))
	r.Handle("/metrics", promhttp.Handler())

	playlistHandler := handler.NewPlaylistHandler(d.defaults, d.playlists, d.warm, d.snapshotExpiry, d.logger)
	adminHandler := handler.NewAdminHandler(d.defaults, d.playlists, d.warm, d.logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/playlists/{playlistID}", func(r chi.Router) {
			if d.rateLimit.Enabled {
				limiter := middleware.NewIPRateLimiter(d.rateLimit.RequestsPerMinute, d.rateLimit.Burst, d.rateLimit.IdleTTL)
				r.Use(middleware.RateLimit(limiter, d.logger))
			}
			r.Use(middleware.IdentifyAdmin(d.adminToken))

			r.Get("/videos", playlistHandler.GetVideos)
			r.Get("/snapshot", playlistHandler.GetSnapshot)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.adminToken))

			r.Get("/defaults", adminHandler.GetDefaults)
			r.Put("/defaults", adminHandler.PutDefaults)
			r.Put("/api-key", adminHandler.PutAPIKey)
			r.Post("/cache/purge", adminHandler.PurgeCache)
			r.Post("/playlists/warm", adminHandler.Warm)
		})
	})

	return r
}
