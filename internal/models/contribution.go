package models

import (
	"time"

	"github.com/google/uuid"
)

// ContributionStatus distinguishes promised money from money already paid.
type ContributionStatus string

// Contribution statuses
const (
	ContributionPledged ContributionStatus = "pledged"
	ContributionPaid    ContributionStatus = "paid"
)

// Contribution is an immutable ledger entry toward an item's cost.
type Contribution struct {
	ID        uuid.UUID          `json:"id"`
	ItemID    uuid.UUID          `json:"item_id"`
	UserID    uuid.UUID          `json:"user_id"`
	Amount    float64            `json:"amount"`
	Status    ContributionStatus `json:"status"`
	Currency  string             `json:"-"` // the owning item's currency, filled by joins
	CreatedAt time.Time          `json:"created_at"`
}

// ContributionWithUser is a ledger entry with the contributor's display name.
type ContributionWithUser struct {
	Contribution
	DisplayName string
}

// Totals are the aggregate amounts of an item's ledger.
type Totals struct {
	Total   float64 `json:"total"`
	Pledged float64 `json:"total_pledged"`
	Paid    float64 `json:"total_paid"`
}

// ContributionEntry is one row of an item's contribution breakdown.
type ContributionEntry struct {
	Amount      float64            `json:"amount"`
	Status      ContributionStatus `json:"status"`
	DisplayName string             `json:"display_name"`
	IsMe        bool               `json:"is_me"`
}

// ContributionBreakdown lists an item's totals and entries with contributor names.
type ContributionBreakdown struct {
	Totals
	Contributions []ContributionEntry `json:"contributions"`
}
