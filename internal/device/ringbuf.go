// Package device implements the sensor-side runtime: the sample rings,
// the packetizer that batches samples into frames, and the run loop
// that ties sampling, sending, and the ranging watchdog together.
package device

import (
	"sync/atomic"
)

// Ring is a single-producer single-consumer ring buffer. The producer
// is the sampling path, the consumer is the packetizer; neither blocks
// the other. Capacity is rounded up to the next power of two so index
// math is a mask.
type Ring[T any] struct {
	buf  []T
	mask uint64

	head atomic.Uint64 // next slot to pop
	tail atomic.Uint64 // next slot to push
}

// NewRing creates a ring holding at least capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Ring[T]{
		buf:  make([]T, size),
		mask: uint64(size - 1),
	}
}

// Push adds a sample. Returns false when the ring is full; buffered
// samples are never overwritten.
func (r *Ring[T]) Push(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head > r.mask {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest sample. Returns false when the ring is empty.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	head := r.head.Load()
	if head == r.tail.Load() {
		return zero, false
	}
	v := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return v, true
}

// Len returns the number of buffered samples.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring capacity after rounding.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}
