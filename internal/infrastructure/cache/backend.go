package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// BackendConfig selects and configures the playlist cache backend.
type BackendConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Memory        MemoryConfig
}

// Backend is an opened PlaylistCache together with its lifecycle hooks.
type Backend struct {
	PlaylistCache
	Name  string
	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend is reachable. The memory backend always is.
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the configured backend. Redis is pinged once so a bad address
// fails at startup.
func Open(ctx context.Context, cfg BackendConfig) (*Backend, error) {
	switch cfg.Backend {
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return &Backend{
			PlaylistCache: NewRedisPlaylistCache(client),
			Name:          BackendRedis,
			ping:          func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:         client.Close,
		}, nil

	case BackendMemory:
		mem, err := NewMemoryPlaylistCache(cfg.Memory)
		if err != nil {
			return nil, err
		}
		return &Backend{PlaylistCache: mem, Name: BackendMemory}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
