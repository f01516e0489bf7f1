// Package queue provides the unbounded, shutdown-aware mailbox that decouples
// message producers from a connection's writer goroutine.
package queue

import (
	"sync"
	"time"
)

// Queue is a FIFO safe for any number of producers and exactly one consumer.
// Push never blocks. Growth is unbounded: a consumer that cannot keep up
// accumulates a backlog in memory.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	// signal holds at most one wake-up token for the consumer.
	signal chan struct{}
	done   chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends item. It returns false, dropping the item, once Shutdown has
// been called.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Pop blocks until an item is available or the queue is shut down and
// drained, in which case ok is false.
func (q *Queue[T]) Pop() (item T, ok bool) {
	return q.wait(nil)
}

// PopTimeout is Pop bounded by timeout. ok is false on expiry or when the
// queue is shut down and drained.
func (q *Queue[T]) PopTimeout(timeout time.Duration) (item T, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return q.wait(timer.C)
}

func (q *Queue[T]) wait(expired <-chan time.Time) (item T, ok bool) {
	for {
		if item, ok, closed := q.tryPop(); ok || closed {
			return item, ok
		}
		select {
		case <-q.signal:
		case <-q.done:
		case <-expired:
			return q.popNow()
		}
	}
}

// popNow gives an item pushed right at expiry a last chance.
func (q *Queue[T]) popNow() (item T, ok bool) {
	item, ok, _ = q.tryPop()
	return item, ok
}

func (q *Queue[T]) tryPop() (item T, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item, false, q.closed
	}
	item = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return item, true, false
}

// Shutdown rejects further pushes and wakes the consumer. Items already
// queued can still be popped. Calling it more than once is harmless.
func (q *Queue[T]) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
