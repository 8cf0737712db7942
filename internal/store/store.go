package store

import (
	"math"
	"sync"
)

// EventStore owns the set of events for one process. A reader-writer lock
// guards the id table: creates are writers, lookups and listings are
// readers, so lookups of unrelated events run fully in parallel. A
// separate append-ordered id slice preserves creation order for List —
// events are listed in the order they were created, not sorted by id.
//
// Events are never deleted; the store lives for the process lifetime of
// its owner.
type EventStore struct {
	mu    sync.RWMutex
	byID  map[uint32]*Event
	order []uint32
}

// NewEventStore returns an empty store.
func NewEventStore() *EventStore {
	return &EventStore{byID: make(map[uint32]*Event)}
}

// Create allocates a zero-initialized event and inserts it. The existence
// check and the insert happen under one write lock, so two concurrent
// creates of the same id cannot both succeed, and a concurrent Lookup
// never observes a partially initialized event: the event is fully built
// before it becomes reachable.
//
// Dimensions come straight off the wire as arbitrary u64 values, so
// rows*cols must be checked for overflow before sizing the grid: an
// overflowed product would allocate a grid smaller than the dimensions
// advertise and in-bounds reservations would index past it.
func (s *EventStore) Create(id uint32, rows, cols uint64) error {
	if rows == 0 || cols == 0 {
		return ErrInvalidDimensions
	}
	if rows > math.MaxUint64/cols {
		return ErrInvalidDimensions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; ok {
		return ErrEventExists
	}
	s.byID[id] = newEvent(id, rows, cols)
	s.order = append(s.order, id)
	return nil
}

// Lookup returns the event with the given id, or false if unknown. The
// handle stays valid indefinitely; seat-level locking is the event's own
// concern, so Lookup never blocks on seat locks.
func (s *EventStore) Lookup(id uint32) (*Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.byID[id]
	return ev, ok
}

// List returns the event ids in creation order. The result is a copy; an
// empty slice means no events exist.
func (s *EventStore) List() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint32, len(s.order))
	copy(out, s.order)
	return out
}
