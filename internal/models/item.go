package models

import (
	"time"

	"github.com/google/uuid"
)

// ClaimStatus is the reservation state of an item.
type ClaimStatus string

// Claim statuses
const (
	ClaimAvailable ClaimStatus = "available"
	ClaimReserved  ClaimStatus = "reserved"
	ClaimPurchased ClaimStatus = "purchased"
)

// Valid reports whether s is a known claim status.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimAvailable, ClaimReserved, ClaimPurchased:
		return true
	}
	return false
}

// Item is a desired thing on a list. Claimant fields are set iff Status != available.
type Item struct {
	ID                 uuid.UUID   `json:"id"`
	WishlistID         uuid.UUID   `json:"wishlist_id"`
	Title              string      `json:"title"`
	Description        *string     `json:"description"`
	LinkURL            *string     `json:"link_url"`
	ImageURL           *string     `json:"image_url"`
	Price              *float64    `json:"price"`
	Currency           *string     `json:"currency"`
	Position           int         `json:"position"`
	Status             ClaimStatus `json:"reservation_status"`
	ReservedByID       *uuid.UUID  `json:"reserved_by_id"`
	ReservedAt         *time.Time  `json:"reserved_at"`
	ReservationMessage *string     `json:"reservation_message"`
	ContributedByID    *uuid.UUID  `json:"contributed_by_id"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// CurrencyCode returns the item's currency or an empty string.
func (i *Item) CurrencyCode() string {
	if i.Currency == nil {
		return ""
	}
	return *i.Currency
}

// ItemView is the item as rendered to a particular audience, with contribution totals.
type ItemView struct {
	Item
	ContributedTotal   float64 `json:"contributed_total"`
	ContributedPledged float64 `json:"contributed_pledged"`
	ContributedPaid    float64 `json:"contributed_paid"`
}

// NewItemView builds a view of item. When hideIdentity is set, who reserved the
// item and their message are stripped so the owner and public viewers cannot see them.
func NewItemView(item Item, totals Totals, hideIdentity bool) ItemView {
	if hideIdentity {
		item.ReservedByID = nil
		item.ReservedAt = nil
		item.ReservationMessage = nil
	}
	return ItemView{
		Item:               item,
		ContributedTotal:   totals.Total,
		ContributedPledged: totals.Pledged,
		ContributedPaid:    totals.Paid,
	}
}
