package models

import (
	"time"

	"github.com/google/uuid"
)

// PublicLink is a capability token granting read access to a list without login.
type PublicLink struct {
	ID         uuid.UUID  `json:"id"`
	WishlistID uuid.UUID  `json:"wishlist_id"`
	Token      string     `json:"token"`
	ExpiresAt  *time.Time `json:"expires_at"`
	MaxViews   *int       `json:"max_views"`
	ViewCount  int        `json:"view_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Expired reports whether the link has passed its expiry time.
func (l *PublicLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// Exhausted reports whether the view ceiling has been reached.
func (l *PublicLink) Exhausted() bool {
	return l.MaxViews != nil && l.ViewCount >= *l.MaxViews
}
