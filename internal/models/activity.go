package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity kinds
const (
	ActivityItemAdded     = "item_added"
	ActivityItemReserved  = "item_reserved"
	ActivityItemPurchased = "item_purchased"
)

// Activity is an audit record of a user action on a list.
type Activity struct {
	ID         uuid.UUID  `json:"id"`
	WishlistID uuid.UUID  `json:"wishlist_id"`
	UserID     uuid.UUID  `json:"user_id"`
	ItemID     *uuid.UUID `json:"item_id"`
	Kind       string     `json:"kind"`
	CreatedAt  time.Time  `json:"created_at"`
}
