package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds
const (
	NotifyRefundPaid         = "refund_paid"
	NotifyItemRemovedPledged = "item_removed_pledged"
	NotifyItemRemoved        = "item_removed"
	NotifyWishlistDeleted    = "wishlist_deleted"
	NotifyWishlistSuggestion = "wishlist_suggestion"
	NotifySuggestionAccepted = "suggestion_accepted"
)

// Notification is a durable per-user message created in reaction to an event.
// Only ReadAt ever changes after creation.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Kind      string         `json:"kind"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Payload   map[string]any `json:"payload,omitempty"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}
