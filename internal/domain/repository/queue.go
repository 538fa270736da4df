package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WarmTask asks a worker to refresh one playlist cache entry.
// Params carries the same flat parameters the public endpoint accepts, so the
// worker resolves the query exactly as a render would.
type WarmTask struct {
	TaskID      uuid.UUID         `json:"task_id"`
	Params      map[string]string `json:"params"`
	RetryCount  int               `json:"retry_count"`
	RequestedAt time.Time         `json:"requested_at"`
}

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishWarmTask sends a cache-warm task to the queue.
	// Used by the admin API to refresh playlists out of band.
	PublishWarmTask(ctx context.Context, task WarmTask) error

	// ConsumeWarmTasks starts consuming warm tasks from the queue.
	// The handler function is called for each received task.
	// Blocks until the context is cancelled or the delivery channel closes.
	// Used by the worker service.
	ConsumeWarmTasks(ctx context.Context, handler func(task WarmTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
