package store

import (
	"sort"
	"sync"

	"github.com/iliyamo/event-management-system/internal/model"
)

// Event is one reservable entity with a fixed seat grid. The grid is a
// row-major slice of reservation markers (0 = free) guarded by one mutex
// per seat, so reservations touching disjoint seat sets proceed in
// parallel. The reservation counter has its own mutex: counter increments
// must be serialized even though seat locks are taken per seat.
//
// Id, rows and cols never change after creation and events are never
// deleted, so those fields need no locking.
type Event struct {
	id   uint32
	rows uint64
	cols uint64

	seatLocks []sync.Mutex
	seats     []uint32

	counterMu    sync.Mutex
	reservations uint32
}

func newEvent(id uint32, rows, cols uint64) *Event {
	total := rows * cols
	return &Event{
		id:        id,
		rows:      rows,
		cols:      cols,
		seatLocks: make([]sync.Mutex, total),
		seats:     make([]uint32, total),
	}
}

// ID returns the caller-assigned event id.
func (e *Event) ID() uint32 { return e.id }

// Rows returns the number of seat rows.
func (e *Event) Rows() uint64 { return e.rows }

// Cols returns the number of seat columns.
func (e *Event) Cols() uint64 { return e.cols }

// seatIndex maps a 1-indexed (row, col) pair to its linear grid index.
func (e *Event) seatIndex(row, col uint64) uint64 {
	return (row-1)*e.cols + (col - 1)
}

// canonicalize validates a seat list and converts it into the canonical
// lock-acquisition order: linear seat indices, ascending. Every reservation
// acquires seat locks in this one total order, so two requests can never
// hold-and-wait on each other's seats in reverse. Duplicate seats surface
// as adjacent equal indices after sorting and are rejected here, before
// any lock is taken; the same goes for out-of-bounds coordinates, so a
// failed request provably touches zero seats.
//
// It is a pure function of the grid dimensions and the request, which
// keeps the deadlock-freedom argument independently testable.
func canonicalize(rows, cols uint64, seats []model.Seat) ([]uint64, error) {
	indices := make([]uint64, len(seats))
	for i, s := range seats {
		if s.Row < 1 || s.Row > rows || s.Col < 1 || s.Col > cols {
			return nil, ErrSeatOutOfBounds
		}
		indices[i] = (s.Row-1)*cols + (s.Col - 1)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1] {
			return nil, ErrDuplicateSeat
		}
	}
	return indices, nil
}

// Reserve atomically claims every seat in the request or none of them.
// On success all requested seats are stamped with the same fresh
// reservation id. On failure (out of bounds, duplicate seat, seat taken,
// oversized request) no seat is modified and no lock stays held.
//
// Seat locks are acquired in the canonical ascending-index order and a
// taken seat aborts the walk immediately, releasing everything acquired
// so far. The wait on any one lock is bounded: locks are only ever held
// for the short claim/stamp window, never across I/O or sleeps.
//
// The returned reservation id is this event's monotonically increasing
// sequence number; callers that only need success/failure may ignore it.
func (e *Event) Reserve(seats []model.Seat) (uint32, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	if len(seats) > model.MaxReservationSize {
		return 0, ErrReservationTooLarge
	}

	indices, err := canonicalize(e.rows, e.cols, seats)
	if err != nil {
		return 0, err
	}

	acquired := 0
	for _, idx := range indices {
		e.seatLocks[idx].Lock()
		if e.seats[idx] != 0 {
			// Unwind: this seat stays untouched, everything taken so
			// far (including this lock) is released.
			e.seatLocks[idx].Unlock()
			for i := 0; i < acquired; i++ {
				e.seatLocks[indices[i]].Unlock()
			}
			return 0, ErrSeatReserved
		}
		acquired++
	}

	e.counterMu.Lock()
	e.reservations++
	reservationID := e.reservations
	e.counterMu.Unlock()

	for _, idx := range indices {
		e.seats[idx] = reservationID
	}
	for i := len(indices) - 1; i >= 0; i-- {
		e.seatLocks[indices[i]].Unlock()
	}
	return reservationID, nil
}

// Snapshot copies the seat grid. Each value is read under its own seat
// lock, so every entry was truly that seat's value at some instant during
// the call; reservations committing concurrently appear either fully or
// not at all per seat.
func (e *Event) Snapshot() model.Snapshot {
	out := make([]uint32, len(e.seats))
	for i := range e.seats {
		e.seatLocks[i].Lock()
		out[i] = e.seats[i]
		e.seatLocks[i].Unlock()
	}
	return model.Snapshot{Rows: e.rows, Cols: e.cols, Seats: out}
}
