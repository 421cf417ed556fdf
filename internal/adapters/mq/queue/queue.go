// Package queue provides the bounded ingestion queue between the UDP
// receive task and the frame processor.
//
// Enqueue is strictly non-blocking: when the queue is full the frame
// is refused and the caller drops it, preferring receive throughput
// over completeness. The wire is best-effort anyway.
package queue

import (
	"context"
	"sync"

	"github.com/jrklab/basket-counting/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Datagram is one received, not yet decoded frame payload.
type Datagram []byte

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a frame to the queue.
	// Returns false if the queue is full and the frame was not enqueued.
	Enqueue(ctx context.Context, d Datagram) bool

	// Dequeue returns a channel that will receive frames as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Datagram

	// Len returns the current number of queued frames.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	frames   chan Datagram
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.frames = make(chan Datagram, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a frame to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d Datagram) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.frames <- d:
		metrics.UpdateQueueSize(len(q.frames))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive frames as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Datagram {
	out := make(chan Datagram)
	go func() {
		defer close(out)
		for d := range q.frames {
			select {
			case out <- d:
				metrics.UpdateQueueSize(len(q.frames))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued frames.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.frames)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.frames)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
