package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is a list of desired items owned by exactly one user.
type Wishlist struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsPublic    bool       `json:"is_public"`
	SortOrder   int        `json:"sort_order"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOwner reports whether userID owns the list.
func (w *Wishlist) IsOwner(userID uuid.UUID) bool {
	return w.OwnerID == userID
}

// DeleteImpact summarizes who is affected by deleting a list.
type DeleteImpact struct {
	SharedWithCount   int `json:"shared_with_count"`
	ContributorsCount int `json:"contributors_count"`
}
