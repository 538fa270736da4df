package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RabbitMQ  RabbitMQConfig
	YouTube   YouTubeConfig
	Cache     CacheConfig
	Playlist  PlaylistConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type WorkerConfig struct {
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	TaskTimeout     time.Duration `envconfig:"WORKER_TASK_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"ytslider"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"ytslider"`
	DBName   string `envconfig:"POSTGRES_DB" default:"ytslider"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type MinIOConfig struct {
	Endpoint       string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicEndpoint string `envconfig:"MINIO_PUBLIC_ENDPOINT" default:""`
	AccessKey      string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey      string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket         string `envconfig:"MINIO_BUCKET" default:"ytslider"`
	UseSSL         bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	CreateBucket   bool   `envconfig:"MINIO_CREATE_BUCKET" default:"true"`
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"ytslider"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"ytslider"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

type YouTubeConfig struct {
	BaseURL   string        `envconfig:"YOUTUBE_BASE_URL" default:"https://youtube.googleapis.com/"`
	Timeout   time.Duration `envconfig:"YOUTUBE_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"YOUTUBE_USER_AGENT" default:"ytslider/1.0 (+https://github.com/hszk-dev/ytslider)"`
}

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type CacheConfig struct {
	Backend            string `envconfig:"CACHE_BACKEND" default:"redis"`
	Capacity           int    `envconfig:"CACHE_CAPACITY" default:"10000"`
	Shards             int    `envconfig:"CACHE_SHARDS" default:"64"`
	EvictionPercentage int    `envconfig:"CACHE_EVICTION_PERCENTAGE" default:"10"`
	PurgeOnStart       bool   `envconfig:"CACHE_PURGE_ON_START" default:"false"`
}

type PlaylistConfig struct {
	CoalesceFetches   bool          `envconfig:"PLAYLIST_COALESCE_FETCHES" default:"false"`
	SnapshotURLExpiry time.Duration `envconfig:"PLAYLIST_SNAPSHOT_URL_EXPIRY" default:"15m"`
}

type AdminConfig struct {
	// Token guards the admin routes. Admin routes are disabled when empty.
	Token string `envconfig:"ADMIN_TOKEN" default:""`
}

type RateLimitConfig struct {
	Enabled           bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int           `envconfig:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
	Burst             int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	IdleTTL           time.Duration `envconfig:"RATE_LIMIT_IDLE_TTL" default:"10m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendRedis, CacheBackendMemory, c.Cache.Backend)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("WORKER_MAX_RETRIES must not be negative, got %d", c.Worker.MaxRetries)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_REQUESTS_PER_MINUTE and RATE_LIMIT_BURST")
	}
	return nil
}
