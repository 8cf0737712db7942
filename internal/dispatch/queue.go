// Package dispatch decouples session acceptance from session processing:
// a bounded FIFO buffers pending client sessions and a fixed pool of
// long-lived workers drains it. The capacity bound gives backpressure — a
// burst of connection attempts beyond capacity blocks the acceptor rather
// than spawning unbounded work or dropping requests silently.
package dispatch

import (
	"errors"
	"sync"

	"github.com/iliyamo/event-management-system/internal/model"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("dispatch queue closed")

// Queue is a bounded FIFO of pending sessions. Enqueue blocks while the
// queue is full, Dequeue blocks while it is empty; sessions come out in
// arrival order. Safe for any number of producers and consumers.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []model.PendingSession
	capacity int
	closed   bool
}

// NewQueue returns a queue holding at most capacity pending sessions.
// Capacity must be at least 1.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends one pending session, blocking while the queue is at
// capacity. It returns ErrQueueClosed if the queue is closed before the
// session is accepted.
func (q *Queue) Enqueue(s model.PendingSession) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, s)
	q.notEmpty.Signal()
	return nil
}

// Dequeue removes and returns the oldest pending session, blocking while
// the queue is empty. ok is false once the queue is closed and drained;
// sessions enqueued before Close are still handed out.
func (q *Queue) Dequeue() (s model.PendingSession, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return model.PendingSession{}, false
	}
	s = q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return s, true
}

// Len reports how many sessions are currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further enqueues and wakes every blocked caller. Dequeuers
// drain the remaining sessions, then observe ok == false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
