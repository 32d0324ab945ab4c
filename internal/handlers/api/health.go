package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RoomCounter reports live realtime occupancy.
type RoomCounter interface {
	RoomCounts() (rooms, connections int)
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db      Pinger
	rooms   RoomCounter
	timeout time.Duration
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(db Pinger, rooms RoomCounter) *HealthHandler {
	return &HealthHandler{db: db, rooms: rooms, timeout: 2 * time.Second}
}

// Check pings the database and returns live room counts.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}

	rooms, connections := h.rooms.RoomCounts()
	return jsonSuccess(c, fiber.Map{
		"database":    "ok",
		"rooms":       rooms,
		"connections": connections,
	})
}
