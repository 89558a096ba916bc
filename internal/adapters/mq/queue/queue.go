// Package queue carries client inputs from a transport reader to its session loop.
//
// Enqueue never blocks: a reader that outpaces its loop drops inputs rather
// than stalling the connection.
package queue

import (
	"context"
	"sync"

	"github.com/okian/isles/internal/domain/model"
	"github.com/okian/isles/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Input is the payload type flowing through the queue.
type Input = model.Input

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an input to the queue. It returns ErrFull or ErrClosed
	// when the input was not enqueued.
	Enqueue(ctx context.Context, in Input) error

	// Dequeue returns the channel inputs are delivered on. It is closed
	// when the queue is closed and drained.
	Dequeue() <-chan Input

	// Len returns the current number of queued inputs.
	Len() int

	// Close stops accepting inputs.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	inputs     chan Input
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}
	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}

	q.inputs = make(chan Input, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)

	return q
}

// Enqueue adds an input to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, in Input) error { //nolint:gocritic // hugeParam: Input is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}

	if len(q.inputs) >= q.capacity {
		metrics.RecordQueueEnqueueError("capacity_exceeded")
		return ErrFull
	}

	select {
	case q.inputs <- in:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.inputs), q.capacity)
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the buffer.
func (q *InMemoryQueue) Dequeue() <-chan Input {
	return q.inputs
}

// Len returns the current number of queued inputs.
func (q *InMemoryQueue) Len() int {
	return len(q.inputs)
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close gracefully shuts down the queue. Buffered inputs remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.inputs)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
