package audio

import (
	"fmt"
	"sync"

	"github.com/gosles/slcore/api"
)

const defaultQueueBuffers = 4

// BufferHeader describes one queued buffer, other than the data itself.
type BufferHeader struct {
	Data []byte
}

// BufferQueue is a bounded FIFO of caller-owned buffers feeding a player.
// The consumer side (a hook-driven render path) dequeues; the producer side
// enqueues and is told when the queue is full.
type BufferQueue struct {
	mu       sync.Mutex
	buffers  []BufferHeader
	front    int
	count    int
	consumed int
	callback func()
}

// configure sizes the ring; runs as the slot init hook.
func (q *BufferQueue) configure(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buffers = make([]BufferHeader, n)
	q.front = 0
	q.count = 0
	q.consumed = 0
}

// Resize reconfigures the ring before any buffers are queued.
func (q *BufferQueue) Resize(n int) error {
	if n < 1 {
		return fmt.Errorf("buffer queue size %d: %w", n, api.ErrInvalidParameter)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count != 0 {
		return fmt.Errorf("buffer queue not empty: %w", api.ErrPreconditionViolation)
	}
	q.buffers = make([]BufferHeader, n)
	q.front = 0
	return nil
}

// Enqueue appends a buffer, failing when the ring is full.
func (q *BufferQueue) Enqueue(data []byte) error {
	if data == nil {
		return fmt.Errorf("enqueue nil buffer: %w", api.ErrInvalidParameter)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buffers) == 0 {
		return fmt.Errorf("buffer queue not configured: %w", api.ErrPreconditionViolation)
	}
	if q.count == len(q.buffers) {
		return fmt.Errorf("buffer queue full (%d): %w", len(q.buffers), api.ErrResourceExhausted)
	}
	rear := (q.front + q.count) % len(q.buffers)
	q.buffers[rear] = BufferHeader{Data: data}
	q.count++
	return nil
}

// Dequeue removes the oldest buffer and fires the completion callback.
func (q *BufferQueue) Dequeue() (BufferHeader, bool) {
	q.mu.Lock()
	if q.count == 0 {
		q.mu.Unlock()
		return BufferHeader{}, false
	}
	h := q.buffers[q.front]
	q.buffers[q.front] = BufferHeader{}
	q.front = (q.front + 1) % len(q.buffers)
	q.count--
	q.consumed++
	cb := q.callback
	q.mu.Unlock()
	if cb != nil {
		cb()
	}
	return h, true
}

// Clear drops every queued buffer.
func (q *BufferQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.buffers {
		q.buffers[i] = BufferHeader{}
	}
	q.front = 0
	q.count = 0
}

// State reports queued buffer count and total buffers consumed.
func (q *BufferQueue) State() (queued, consumed int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count, q.consumed
}

// Capacity reports the configured ring size.
func (q *BufferQueue) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffers)
}

// SetCallback registers a buffer-consumed callback.
func (q *BufferQueue) SetCallback(cb func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.callback = cb
}
