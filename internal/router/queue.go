package router

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Queue is an unbounded FIFO with any number of producers and a single
// consumer. Send never blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	items  deque.Deque[T]
	notify chan struct{}
	closed bool

	// Stats
	totalReceived int64
	totalSent     int64
	highWater     int
}

// QueueStats contains queue statistics.
type QueueStats struct {
	Count         int
	HighWater     int
	TotalReceived int64
	TotalSent     int64
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Send appends an item. Returns false if the queue is closed.
func (q *Queue[T]) Send(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items.PushBack(item)
	q.totalReceived++
	if n := q.items.Len(); n > q.highWater {
		q.highWater = n
	}
	q.mu.Unlock()

	q.wake()
	return true
}

// Receive removes and returns the oldest item, blocking until one is
// available, the queue is closed and drained, or ctx is done.
func (q *Queue[T]) Receive(ctx context.Context) (T, bool) {
	for {
		if item, ok := q.TryReceive(); ok {
			return item, true
		}

		q.mu.Lock()
		closed := q.closed && q.items.Len() == 0
		q.mu.Unlock()
		if closed {
			var zero T
			return zero, false
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-q.notify:
		}
	}
}

// TryReceive removes the oldest item without blocking.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	q.totalSent++
	return q.items.PopFront(), true
}

// Close stops accepting items. Receivers drain what is left, then get false.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Count:         q.items.Len(),
		HighWater:     q.highWater,
		TotalReceived: q.totalReceived,
		TotalSent:     q.totalSent,
	}
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
