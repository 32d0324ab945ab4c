package models

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion statuses
const (
	SuggestionPending  = "pending"
	SuggestionAccepted = "accepted"
	SuggestionRejected = "rejected"
)

// Suggestion is an item proposed by a visitor for the owner to accept or reject.
type Suggestion struct {
	ID            uuid.UUID  `json:"id"`
	WishlistID    uuid.UUID  `json:"wishlist_id"`
	SuggestedByID *uuid.UUID `json:"suggested_by_id"`
	Title         string     `json:"title"`
	LinkURL       *string    `json:"link_url"`
	Message       *string    `json:"message"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
