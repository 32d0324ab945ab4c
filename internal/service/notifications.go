package service

import (
	"context"

	"github.com/google/uuid"

	"wishlist/internal/models"
)

// Notifications returns the user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, s.notifyLimit)
}

// MarkRead marks one of the user's notifications read. Another user's
// notification is NotFound.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return translate(s.store.MarkNotificationRead(ctx, userID, id, s.now()))
}

// MarkAllRead marks every unread notification of the user read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, userID, s.now())
}
