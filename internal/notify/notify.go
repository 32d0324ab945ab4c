// Package notify computes who is affected by a change, builds their durable
// notifications and carries live events until the change has committed.
package notify

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"wishlist/internal/ledger"
	"wishlist/internal/models"
)

const (
	maxTitleRunes      = 80
	maxSuggestionRunes = 50
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func titleOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return truncate(s, maxTitleRunes)
}

func formatAmount(amount float64, currency string) string {
	return strings.TrimSpace(fmt.Sprintf("%.2f %s", amount, currency))
}

// ItemRemoval is everything needed to notify about a deleted item. Entries
// and Shares must be read before the delete.
type ItemRemoval struct {
	List    *models.Wishlist
	Item    *models.Item
	Entries []models.Contribution
	Shares  []models.Share
	Actor   uuid.UUID
}

// ItemRemoved returns a refund per (contributor, currency) with paid money, a
// cancellation to contributors who only pledged, and a removal notice to share
// holders who did not contribute. The actor is never notified.
func ItemRemoved(r ItemRemoval) []models.Notification {
	itemTitle := titleOr(r.Item.Title, "Item")
	listTitle := titleOr(r.List.Title, "Wishlist")
	settlement := ledger.Settle(r.Entries, r.Actor)

	var out []models.Notification
	for _, refund := range settlement.Refunds {
		out = append(out, models.Notification{
			UserID: refund.UserID,
			Kind:   models.NotifyRefundPaid,
			Title:  "Refund",
			Body:   fmt.Sprintf("You were refunded %s. The item was removed from the list.", formatAmount(refund.Amount, refund.Currency)),
			Payload: map[string]any{
				"amount":     refund.Amount,
				"currency":   refund.Currency,
				"item_title": itemTitle,
				"list_title": listTitle,
			},
		})
	}
	for _, userID := range settlement.Cancelled {
		out = append(out, models.Notification{
			UserID:  userID,
			Kind:    models.NotifyItemRemovedPledged,
			Title:   "Item removed",
			Body:    fmt.Sprintf(`"%s" was removed from "%s". Your pledged amount is cancelled.`, itemTitle, listTitle),
			Payload: map[string]any{"item_title": itemTitle, "list_title": listTitle},
		})
	}

	contributors := settlement.Contributors()
	for _, share := range r.Shares {
		if share.UserID == r.Actor {
			continue
		}
		if _, ok := contributors[share.UserID]; ok {
			continue
		}
		out = append(out, models.Notification{
			UserID:  share.UserID,
			Kind:    models.NotifyItemRemoved,
			Title:   "Item removed",
			Body:    fmt.Sprintf(`"%s" was removed from "%s".`, itemTitle, listTitle),
			Payload: map[string]any{"item_title": itemTitle, "list_title": listTitle},
		})
	}
	return out
}

// ListDeletion is everything needed to notify about a deleted list. Items,
// Entries and Shares must be read before the delete.
type ListDeletion struct {
	List    *models.Wishlist
	Items   []models.Item
	Entries []models.Contribution
	Shares  []models.Share
	Actor   uuid.UUID
}

// ListDeleted returns a refund per (contributor, currency) with paid money and
// a deletion notice to every other affected user: share holders, reservers,
// proposers of accepted suggestions and pledgers. The actor is never notified.
func ListDeleted(d ListDeletion) []models.Notification {
	listTitle := titleOr(d.List.Title, "Wishlist")
	settlement := ledger.Settle(d.Entries, d.Actor)

	affected := make(map[uuid.UUID]struct{})
	add := func(id *uuid.UUID) {
		if id != nil && *id != d.Actor {
			affected[*id] = struct{}{}
		}
	}
	for i := range d.Shares {
		add(&d.Shares[i].UserID)
	}
	for i := range d.Items {
		add(d.Items[i].ReservedByID)
		add(d.Items[i].ContributedByID)
	}
	for i := range d.Entries {
		add(&d.Entries[i].UserID)
	}

	var out []models.Notification
	for _, refund := range settlement.Refunds {
		out = append(out, models.Notification{
			UserID: refund.UserID,
			Kind:   models.NotifyRefundPaid,
			Title:  "Refund",
			Body:   fmt.Sprintf("You were refunded %s. The wishlist was deleted by the owner.", formatAmount(refund.Amount, refund.Currency)),
			Payload: map[string]any{
				"amount":     refund.Amount,
				"currency":   refund.Currency,
				"list_title": listTitle,
			},
		})
	}

	for _, userID := range sortedIDs(affected) {
		if settlement.Refunded(userID) {
			continue
		}
		out = append(out, models.Notification{
			UserID:  userID,
			Kind:    models.NotifyWishlistDeleted,
			Title:   "Wishlist deleted",
			Body:    fmt.Sprintf(`"%s" was deleted by the owner. You no longer have access to it.`, listTitle),
			Payload: map[string]any{"list_title": listTitle},
		})
	}
	return out
}

// SuggestionCreated tells the owner about a new suggestion.
func SuggestionCreated(list *models.Wishlist, s *models.Suggestion) models.Notification {
	title := s.Title
	if len([]rune(title)) > maxSuggestionRunes {
		title = truncate(title, maxSuggestionRunes) + "…"
	}
	listTitle := titleOr(list.Title, "Wishlist")
	return models.Notification{
		UserID:  list.OwnerID,
		Kind:    models.NotifyWishlistSuggestion,
		Title:   "New suggestion for your wishlist",
		Body:    fmt.Sprintf(`Someone suggested adding "%s" to your list "%s". Open the list to accept or reject.`, title, listTitle),
		Payload: map[string]any{"list_title": listTitle},
	}
}

// SuggestionAccepted tells the proposer their suggestion became an item.
// Anonymous suggestions and the owner's own suggestions produce nothing.
func SuggestionAccepted(list *models.Wishlist, s *models.Suggestion) (models.Notification, bool) {
	if s.SuggestedByID == nil || *s.SuggestedByID == list.OwnerID {
		return models.Notification{}, false
	}
	return models.Notification{
		UserID:  *s.SuggestedByID,
		Kind:    models.NotifySuggestionAccepted,
		Title:   "Your suggestion was added",
		Body:    fmt.Sprintf(`"%s" was added to the wishlist.`, truncate(s.Title, maxTitleRunes)),
		Payload: map[string]any{"item_title": truncate(s.Title, maxTitleRunes), "list_title": titleOr(list.Title, "Wishlist")},
	}, true
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
