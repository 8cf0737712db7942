package dispatch

import (
	"sync"

	"github.com/iliyamo/event-management-system/internal/model"
)

// SessionHandler drives one client session to completion. The worker id
// doubles as the session identifier communicated to the client during the
// handshake; it identifies the worker, never the session, and is reused
// for the worker's next session.
type SessionHandler func(workerID uint32, s model.PendingSession)

// Pool runs a fixed set of long-lived session workers. Each worker loops:
// dequeue one pending session, hand it to the handler, return for the
// next. Workers exit when the queue is closed and drained.
type Pool struct {
	queue   *Queue
	handler SessionHandler
	workers int
	wg      sync.WaitGroup
}

// NewPool returns a pool of the given fixed size. Workers do not start
// until Start is called.
func NewPool(workers int, q *Queue, h SessionHandler) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{queue: q, handler: h, workers: workers}
}

// Start launches the workers. Call once.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(uint32(i))
	}
}

func (p *Pool) run(workerID uint32) {
	defer p.wg.Done()
	for {
		s, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		p.handler(workerID, s)
	}
}

// Wait blocks until every worker has exited. Close the queue first.
func (p *Pool) Wait() { p.wg.Wait() }
