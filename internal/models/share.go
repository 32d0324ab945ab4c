package models

import (
	"time"

	"github.com/google/uuid"
)

// Share roles
const (
	ShareViewer = "viewer"
	ShareEditor = "editor"
)

// Share grants a non-owner user a role on a list.
type Share struct {
	ID         uuid.UUID `json:"id"`
	WishlistID uuid.UUID `json:"wishlist_id"`
	UserID     uuid.UUID `json:"user_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}
