package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/models"
)

// NotificationService is the notification surface of the service layer.
type NotificationService interface {
	Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// NotificationHandler handles the caller's notifications.
type NotificationHandler struct {
	svc NotificationService
}

// NewNotificationHandler creates a new API notification handler.
func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	ns, err := h.svc.Notifications(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	if ns == nil {
		ns = []models.Notification{}
	}
	return jsonSuccess(c, ns)
}

// MarkRead marks one notification read.
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "Notification not found")
	}

	if err := h.svc.MarkRead(c.Context(), user.ID, id); err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"id": id})
}

// MarkAllRead marks every unread notification read.
func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	n, err := h.svc.MarkAllRead(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, fiber.Map{"marked": n})
}
