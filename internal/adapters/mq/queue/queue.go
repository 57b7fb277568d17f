// Package queue holds analysis tasks waiting for a worker.
//
// The in-memory implementation is a bounded channel. Enqueue never blocks:
// a full or closed queue rejects the task and the caller reports it.
package queue

import (
	"context"
	"sync"

	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/pkg/metrics"
)

const defaultQueueCapacity = 64

// Task is one analysis job waiting to run.
type Task struct {
	JobID   string
	Request analysis.Request
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It returns false when the queue is full or closed.
	Enqueue(ctx context.Context, t Task) bool

	// Dequeue returns a channel receiving tasks. It is closed with the queue.
	Dequeue(ctx context.Context) <-chan Task

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return false
	}

	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.tasks))
		return true
	default:
		metrics.RecordQueueRejected("full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives tasks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.UpdateQueueSize(len(q.tasks))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of waiting tasks.
func (q *InMemoryQueue) Len(context.Context) int {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the configured bound.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting tasks and closes the dequeue channel once drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
