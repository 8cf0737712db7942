// Package store owns the in-memory event state: the id-keyed event table
// and each event's seat grid with its locking discipline. This file defines
// sentinel error values reused across the store and by higher layers such
// as the session workers, which translate them into wire status codes.
package store

import "errors"

// ErrEventExists is returned by Create when an event with the requested id
// is already present. The duplicate-id check and the insert happen under
// one write lock, so of two racing creates exactly one sees this error.
var ErrEventExists = errors.New("event already exists")

// ErrEventNotFound is returned when the requested event id is unknown.
var ErrEventNotFound = errors.New("event not found")

// ErrInvalidDimensions is returned by Create when rows or cols is zero.
var ErrInvalidDimensions = errors.New("event dimensions must be positive")

// ErrSeatOutOfBounds is returned by Reserve when a requested seat lies
// outside the event's grid. The reservation touches no seats.
var ErrSeatOutOfBounds = errors.New("seat out of bounds")

// ErrSeatReserved is returned by Reserve when a requested seat already
// carries a reservation id. The reservation touches no seats.
var ErrSeatReserved = errors.New("seat already reserved")

// ErrDuplicateSeat is returned by Reserve when the same seat appears twice
// in one request. Detected before any seat lock is taken.
var ErrDuplicateSeat = errors.New("duplicate seat in request")

// ErrReservationTooLarge is returned by Reserve when a single request names
// more than model.MaxReservationSize seats.
var ErrReservationTooLarge = errors.New("reservation request too large")
