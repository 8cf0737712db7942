package model

// MaxReservationSize caps how many seats a single reservation request may
// name. It bounds one request, not the total size of an event's grid: an
// event may hold far more seats than any one reservation can claim.
const MaxReservationSize = 256

// Seat identifies one cell in an event's seat grid. Coordinates are
// 1-indexed: the top-left seat of a grid is (1,1).
//
// Fields:
//
//	Row – row of the seat, in [1, rows].
//	Col – column of the seat, in [1, cols].
type Seat struct {
	Row uint64 `json:"row"`
	Col uint64 `json:"col"`
}
