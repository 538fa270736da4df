// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ytslider"

var (
	// CacheOperationsTotal tracks cache operations (get, set, purge).
	// Labels:
	//   - operation: get, set, purge
	//   - status: hit, miss, success, error
	//   - cache_type: redis, memory
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// PlaylistRequestsTotal tracks pipeline outcomes.
	// Labels:
	//   - result: success, invalid_config, fetch_failure, empty_result
	//   - source: cache, api, none
	PlaylistRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playlist_requests_total",
			Help:      "Total number of playlist pipeline runs by outcome",
		},
		[]string{"result", "source"},
	)

	// YouTubeFetchDuration observes playlistItems round trips.
	// Labels:
	//   - status: success, error
	YouTubeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "youtube_fetch_duration_seconds",
			Help:      "Duration of YouTube playlistItems requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"status"},
	)

	// SingleflightRequestsTotal tracks singleflight behavior.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// WarmTasksTotal tracks worker task outcomes.
	// Labels:
	//   - result: refreshed, dropped, retry
	WarmTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warm_tasks_total",
			Help:      "Total number of cache-warm tasks processed",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet   = "get"
	CacheOpSet   = "set"
	CacheOpPurge = "purge"
)

// Cache type constants.
const (
	CacheTypeRedis  = "redis"
	CacheTypeMemory = "memory"
)

// Playlist source constants.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
	SourceNone  = "none"
)

// Fetch status constants.
const (
	FetchStatusSuccess = "success"
	FetchStatusError   = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Warm task result constants.
const (
	WarmRefreshed = "refreshed"
	WarmDropped   = "dropped"
	WarmRetry     = "retry"
)
