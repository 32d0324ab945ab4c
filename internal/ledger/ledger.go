// Package ledger aggregates item contributions and computes the settlement
// owed to contributors when items are destroyed.
package ledger

import (
	"bytes"
	"math"
	"sort"

	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
)

// toCents converts an amount to integer cents so sums are exact and order-independent.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

// Round2 rounds an amount to two decimal places.
func Round2(amount float64) float64 {
	return fromCents(toCents(amount))
}

// Aggregate folds entries into totals. Entries with any status other than
// paid count as pledged.
func Aggregate(entries []models.Contribution) models.Totals {
	var total, pledged, paid int64
	for _, e := range entries {
		c := toCents(e.Amount)
		total += c
		if e.Status == models.ContributionPaid {
			paid += c
		} else {
			pledged += c
		}
	}
	return models.Totals{
		Total:   fromCents(total),
		Pledged: fromCents(pledged),
		Paid:    fromCents(paid),
	}
}

// AggregateByItem groups entries by item and aggregates each group. Every id
// in itemIDs is present in the result, with zero totals when it has no entries.
func AggregateByItem(itemIDs []uuid.UUID, entries []models.Contribution) map[uuid.UUID]models.Totals {
	byItem := make(map[uuid.UUID][]models.Contribution, len(itemIDs))
	for _, e := range entries {
		byItem[e.ItemID] = append(byItem[e.ItemID], e)
	}
	out := make(map[uuid.UUID]models.Totals, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = Aggregate(byItem[id])
	}
	return out
}

// Breakdown renders entries with names, marking the viewer's own entries.
// Contributor identity is deliberately visible to every member, owner included.
func Breakdown(entries []models.ContributionWithUser, viewer uuid.UUID) models.ContributionBreakdown {
	plain := make([]models.Contribution, 0, len(entries))
	rows := make([]models.ContributionEntry, 0, len(entries))
	for _, e := range entries {
		plain = append(plain, e.Contribution)
		rows = append(rows, models.ContributionEntry{
			Amount:      Round2(e.Amount),
			Status:      e.Status,
			DisplayName: e.DisplayName,
			IsMe:        e.UserID == viewer,
		})
	}
	return models.ContributionBreakdown{Totals: Aggregate(plain), Contributions: rows}
}

// ValidateNew checks a contribution before it is appended. Owners cannot fund
// their own list; amounts must be positive.
func ValidateNew(list *models.Wishlist, contributor uuid.UUID, amount float64, status models.ContributionStatus) error {
	if list.IsOwner(contributor) {
		return apperr.Forbidden("Owner cannot add money contribution to their own list")
	}
	if toCents(amount) <= 0 {
		return apperr.Validation("amount must be greater than 0")
	}
	if status != models.ContributionPledged && status != models.ContributionPaid {
		return apperr.Validation("status must be pledged or paid")
	}
	return nil
}

// Refund is money owed back to one contributor in one currency.
type Refund struct {
	UserID   uuid.UUID
	Currency string
	Amount   float64
}

// Settlement is what destroying a set of entries owes to contributors.
type Settlement struct {
	Refunds []Refund
	// Cancelled holds contributors who only pledged and get a cancellation notice.
	Cancelled []uuid.UUID
}

// Contributors returns every user who appears in the settlement.
func (s Settlement) Contributors() map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(s.Refunds)+len(s.Cancelled))
	for _, r := range s.Refunds {
		out[r.UserID] = struct{}{}
	}
	for _, id := range s.Cancelled {
		out[id] = struct{}{}
	}
	return out
}

// Refunded reports whether userID receives at least one refund.
func (s Settlement) Refunded(userID uuid.UUID) bool {
	for _, r := range s.Refunds {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Settle computes refunds per (contributor, currency) from paid entries and
// cancellations for contributors with only pledged entries. A contributor with
// any paid entry gets refunds only. Entries by actor are skipped. Output is
// sorted for deterministic notification order.
func Settle(entries []models.Contribution, actor uuid.UUID) Settlement {
	type key struct {
		user     uuid.UUID
		currency string
	}
	paid := make(map[key]int64)
	paidUsers := make(map[uuid.UUID]bool)
	pledgers := make(map[uuid.UUID]bool)

	for _, e := range entries {
		if e.UserID == actor {
			continue
		}
		if e.Status == models.ContributionPaid {
			c := toCents(e.Amount)
			if c <= 0 {
				continue
			}
			paid[key{e.UserID, e.Currency}] += c
			paidUsers[e.UserID] = true
		} else {
			pledgers[e.UserID] = true
		}
	}

	var s Settlement
	for k, c := range paid {
		s.Refunds = append(s.Refunds, Refund{UserID: k.user, Currency: k.currency, Amount: fromCents(c)})
	}
	for id := range pledgers {
		if !paidUsers[id] {
			s.Cancelled = append(s.Cancelled, id)
		}
	}

	sort.Slice(s.Refunds, func(i, j int) bool {
		if cmp := bytes.Compare(s.Refunds[i].UserID[:], s.Refunds[j].UserID[:]); cmp != 0 {
			return cmp < 0
		}
		return s.Refunds[i].Currency < s.Refunds[j].Currency
	})
	sort.Slice(s.Cancelled, func(i, j int) bool {
		return bytes.Compare(s.Cancelled[i][:], s.Cancelled[j][:]) < 0
	})
	return s
}
