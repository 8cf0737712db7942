// Package router defines how HTTP routes are registered for the
// monitoring gateway.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-management-system/internal/handler"
)

// RegisterRoutes registers the gateway's routes on the provided Echo
// instance. The event list is served through the cache middleware — a
// short TTL keeps listings cheap under polling without hiding new events
// for long. The per-event seat grid is never cached: a stale grid would
// misreport live seat availability.
func RegisterRoutes(e *echo.Echo, h *handler.MonitorHandler, cache echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)

	e.GET("/v1/events", h.GetEvents, cache)
	e.GET("/v1/events/:id/seats", h.GetEventSeats)
}
