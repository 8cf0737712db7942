// Package handler exposes the HTTP handlers of the monitoring gateway.
// The gateway is a read-only operator surface over the live reservation
// engine: clients reserve seats over the pipe protocol, operators browse
// state over HTTP. No endpoint mutates engine state.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-management-system/internal/engine"
	"github.com/iliyamo/event-management-system/internal/store"
)

// MonitorHandler serves read-only views of the reservation engine.
type MonitorHandler struct {
	Engine *engine.Engine
}

// EventSummary is one entry of the event list response.
type EventSummary struct {
	ID uint32 `json:"id"`
}

// EventSeats is the seat-grid response for a single event. Seats is a
// rows×cols matrix of reservation ids, 0 marking a free seat.
type EventSeats struct {
	ID    uint32     `json:"id"`
	Rows  uint64     `json:"rows"`
	Cols  uint64     `json:"cols"`
	Seats [][]uint32 `json:"seats"`
}

// GetEvents returns all event ids in creation order. Response JSON
// contains an "items" array of EventSummary.
func (h *MonitorHandler) GetEvents(c echo.Context) error {
	ids, err := h.Engine.List()
	if err != nil {
		if errors.Is(err, engine.ErrNotInitialized) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "engine not initialized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "engine error"})
	}
	out := make([]EventSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, EventSummary{ID: id})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetEventSeats returns a consistent snapshot of one event's seat grid.
func (h *MonitorHandler) GetEventSeats(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	snap, err := h.Engine.Show(uint32(id))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, engine.ErrNotInitialized):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "engine not initialized"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "engine error"})
		}
	}
	grid := make([][]uint32, snap.Rows)
	for r := uint64(0); r < snap.Rows; r++ {
		grid[r] = snap.Seats[r*snap.Cols : (r+1)*snap.Cols]
	}
	return c.JSON(http.StatusOK, EventSeats{ID: uint32(id), Rows: snap.Rows, Cols: snap.Cols, Seats: grid})
}
