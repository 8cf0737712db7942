// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

import "github.com/iliyamo/event-management-system/internal/model"

// ReservationQueueName is the broker queue carrying confirmed-reservation
// events.
const ReservationQueueName = "reservation.confirmed"

// ReservationConfirmedEvent is published after a reservation commits. It
// carries enough information for downstream consumers to log or trigger
// analytics without querying the live engine.
type ReservationConfirmedEvent struct {
	EventID       uint32       `json:"event_id"`
	ReservationID uint32       `json:"reservation_id"`
	Seats         []model.Seat `json:"seats"`
	ConfirmedAt   string       `json:"confirmed_at"`
}
