// Package engine exposes the reservation operations consumed by both
// deployment shapes of the system: the session workers of the pipe server
// and the command workers of the batch runner. It layers the documented
// failure semantics and the artificial state-access delay on top of the
// event store.
package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iliyamo/event-management-system/internal/model"
	"github.com/iliyamo/event-management-system/internal/store"
)

// ErrAlreadyInitialized is returned by Init when the engine already holds
// live state.
var ErrAlreadyInitialized = errors.New("engine already initialized")

// ErrNotInitialized is returned by every operation, and by Terminate, when
// Init has not run yet.
var ErrNotInitialized = errors.New("engine not initialized")

// ReservationObserver is notified after a reservation commits. Observers
// must be fast and must not fail the reservation: they run on the calling
// goroutine after all seat locks are released. Used to publish
// reservation-confirmed events to the message broker.
type ReservationObserver func(eventID, reservationID uint32, seats []model.Seat)

// Config carries the engine's runtime knobs.
//
// StateAccessDelay is an artificial pause applied on every access to the
// event table, simulating a costly storage backend. OnReservation, when
// non-nil, observes committed reservations.
type Config struct {
	StateAccessDelay time.Duration
	OnReservation    ReservationObserver
}

// Engine orchestrates the event store. The embedded RWMutex only guards
// the initialized/terminated lifecycle: operations hold it shared for
// their whole duration, so Terminate (a writer) waits out in-flight
// operations instead of pulling state from under them. It serializes
// nothing across events — seat-level concurrency is the store's business.
type Engine struct {
	mu    sync.RWMutex
	st    *store.EventStore
	delay time.Duration
	onRes ReservationObserver
}

// New returns an engine that must be initialized before use.
func New() *Engine { return &Engine{} }

// Init sets up process-wide reservation state. Calling it twice without an
// intervening Terminate fails with ErrAlreadyInitialized.
func (e *Engine) Init(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st != nil {
		return ErrAlreadyInitialized
	}
	e.st = store.NewEventStore()
	e.delay = cfg.StateAccessDelay
	e.onRes = cfg.OnReservation
	return nil
}

// Terminate releases all events. It blocks until in-flight operations have
// drained; callers must not issue new operations concurrently with it.
func (e *Engine) Terminate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st == nil {
		return ErrNotInitialized
	}
	e.st = nil
	return nil
}

// accessDelay simulates accessing a costly storage backend. Configured per
// deployment; zero disables it.
func (e *Engine) accessDelay() {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
}

// Create adds a new event with a zero-initialized rows×cols seat grid.
func (e *Engine) Create(eventID uint32, rows, cols uint64) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.st == nil {
		return ErrNotInitialized
	}
	e.accessDelay()
	return e.st.Create(eventID, rows, cols)
}

// Reserve claims the given seats on one event, all or nothing. On success
// the reservation observer, if any, is invoked with the fresh reservation
// id.
func (e *Engine) Reserve(eventID uint32, seats []model.Seat) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.st == nil {
		return ErrNotInitialized
	}
	e.accessDelay()
	ev, ok := e.st.Lookup(eventID)
	if !ok {
		return store.ErrEventNotFound
	}
	reservationID, err := ev.Reserve(seats)
	if err != nil {
		return err
	}
	if e.onRes != nil && len(seats) > 0 {
		e.onRes(eventID, reservationID, seats)
	}
	return nil
}

// Show returns a consistent snapshot of one event's seat grid.
func (e *Engine) Show(eventID uint32) (model.Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.st == nil {
		return model.Snapshot{}, ErrNotInitialized
	}
	e.accessDelay()
	ev, ok := e.st.Lookup(eventID)
	if !ok {
		return model.Snapshot{}, store.ErrEventNotFound
	}
	return ev.Snapshot(), nil
}

// List returns all event ids in creation order. An empty slice means no
// events exist.
func (e *Engine) List() ([]uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.st == nil {
		return nil, ErrNotInitialized
	}
	e.accessDelay()
	return e.st.List(), nil
}

// DumpAll writes every event's id and seat grid to w in creation order,
// or "No events" when the store is empty. Wired to SIGUSR1 in the server
// so operators can inspect live state without a client session.
func (e *Engine) DumpAll(w io.Writer) error {
	ids, err := e.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		_, err := fmt.Fprintln(w, "No events")
		return err
	}
	for _, id := range ids {
		snap, err := e.Show(id)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Event: %d\n", id); err != nil {
			return err
		}
		if err := snap.WriteGrid(w); err != nil {
			return err
		}
	}
	return nil
}
