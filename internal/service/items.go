package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/apperr"
	"wishlist/internal/ledger"
	"wishlist/internal/metrics"
	"wishlist/internal/models"
	"wishlist/internal/notify"
	"wishlist/internal/realtime"
	"wishlist/internal/reservation"
)

// NewItem is the input for CreateItem.
type NewItem struct {
	Title       string
	Description *string
	LinkURL     *string
	ImageURL    *string
	Price       *float64
	Currency    *string
}

// ReserveInput asks to move an item to Status.
type ReserveInput struct {
	Status  models.ClaimStatus
	Message *string
}

// ListItems returns the list's items in position order. The owner sees them
// without reservation identity.
func (s *Service) ListItems(ctx context.Context, userID, listID uuid.UUID) ([]models.ItemView, error) {
	grant, err := access.NewResolver(s.store).Resolve(ctx, userID, listID, false)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	return views(ctx, s.store, items, grant.IsOwner())
}

// GetItem returns one item as the caller may see it.
func (s *Service) GetItem(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ItemView, error) {
	grant, err := access.NewResolver(s.store).Resolve(ctx, userID, listID, false)
	if err != nil {
		return nil, err
	}
	item, err := s.store.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, translate(err)
	}
	return view(ctx, s.store, item, grant.IsOwner())
}

// CreateItem appends an item to the list. Requires edit rights.
func (s *Service) CreateItem(ctx context.Context, userID, listID uuid.UUID, in NewItem) (*models.ItemView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}

	var created *models.Item
	var isOwner bool
	err := s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		grant, err := access.NewResolver(tx).Resolve(ctx, userID, listID, true)
		if err != nil {
			return err
		}
		isOwner = grant.IsOwner()

		item := &models.Item{
			WishlistID:  listID,
			Title:       title,
			Description: in.Description,
			LinkURL:     in.LinkURL,
			ImageURL:    in.ImageURL,
			Price:       in.Price,
			Currency:    in.Currency,
			Status:      models.ClaimAvailable,
		}
		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}
		if err := tx.CreateActivity(ctx, &models.Activity{
			WishlistID: listID,
			UserID:     userID,
			ItemID:     &item.ID,
			Kind:       models.ActivityItemAdded,
		}); err != nil {
			return err
		}

		created = item
		out.Broadcast(listID, realtime.EventItemAdded, map[string]any{
			"item": models.NewItemView(*item, models.Totals{}, true),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := models.NewItemView(*created, models.Totals{}, isOwner)
	return &v, nil
}

// Reserve changes an item's claim on behalf of a list member with edit rights.
// A refused transition returns *apperr.ConflictError carrying the current item.
func (s *Service) Reserve(ctx context.Context, userID, listID, itemID uuid.UUID, in ReserveInput) (*models.ItemView, error) {
	return s.reserve(ctx, userID, in, itemID, func(tx Store) (*models.Wishlist, bool, error) {
		grant, err := access.NewResolver(tx).Resolve(ctx, userID, listID, true)
		if err != nil {
			return nil, false, err
		}
		return grant.List, grant.IsOwner(), nil
	})
}

// ReservePublic changes an item's claim through a public link. The caller must
// be signed in and must not be the owner. No view is counted.
func (s *Service) ReservePublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in ReserveInput) (*models.ItemView, error) {
	return s.reserve(ctx, userID, in, itemID, func(tx Store) (*models.Wishlist, bool, error) {
		grant, err := access.NewResolver(tx).ValidatePublic(ctx, token)
		if err != nil {
			return nil, false, err
		}
		if grant.List.IsOwner(userID) {
			return nil, false, apperr.Forbidden("Use your list directly to edit")
		}
		return grant.List, true, nil
	})
}

type authorizeFunc func(tx Store) (list *models.Wishlist, hideIdentity bool, err error)

func (s *Service) reserve(ctx context.Context, userID uuid.UUID, in ReserveInput, itemID uuid.UUID, authorize authorizeFunc) (*models.ItemView, error) {
	var result *models.ItemView
	err := s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		list, hide, err := authorize(tx)
		if err != nil {
			return err
		}

		item, err := tx.LockItem(ctx, list.ID, itemID)
		if err != nil {
			return translate(err)
		}

		res, err := reservation.Transition(reservation.ClaimOf(item), reservation.Request{
			Target:  in.Status,
			Actor:   userID,
			Message: in.Message,
			Now:     s.now(),
		})
		if err != nil {
			return err
		}

		switch r := res.(type) {
		case reservation.Conflict:
			current, err := view(ctx, tx, item, hide)
			if err != nil {
				return err
			}
			return &apperr.ConflictError{Reason: r.Reason, Current: current}

		case reservation.Applied:
			r.Claim.ApplyTo(item)
			if err := tx.UpdateItemClaim(ctx, item); err != nil {
				return err
			}
			if r.AuditKind != "" {
				if err := tx.CreateActivity(ctx, &models.Activity{
					WishlistID: list.ID,
					UserID:     userID,
					ItemID:     &item.ID,
					Kind:       r.AuditKind,
				}); err != nil {
					return err
				}
			}

			entries, err := tx.ListContributions(ctx, []uuid.UUID{item.ID})
			if err != nil {
				return err
			}
			totals := ledger.Aggregate(entries)
			out.Broadcast(list.ID, realtime.EventItemUpdated, map[string]any{
				"item": models.NewItemView(*item, totals, true),
			})
			v := models.NewItemView(*item, totals, hide)
			result = &v
		}
		return nil
	})

	var conflict *apperr.ConflictError
	switch {
	case errors.As(err, &conflict):
		metrics.RecordReservation(string(in.Status), "conflict")
	case err == nil:
		metrics.RecordReservation(string(in.Status), "applied")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteItem removes an item. Contributors are refunded or told their pledge
// is cancelled, other share holders are told it is gone.
func (s *Service) DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	return s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		grant, err := access.NewResolver(tx).Resolve(ctx, userID, listID, true)
		if err != nil {
			return err
		}
		item, err := tx.LockItem(ctx, listID, itemID)
		if err != nil {
			return translate(err)
		}
		entries, err := tx.ListContributions(ctx, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		shares, err := tx.ListShares(ctx, listID)
		if err != nil {
			return err
		}

		out.Notify(notify.ItemRemoved(notify.ItemRemoval{
			List:    grant.List,
			Item:    item,
			Entries: entries,
			Shares:  shares,
			Actor:   userID,
		})...)
		out.Broadcast(listID, realtime.EventItemRemoved, map[string]any{"item_id": itemID})

		return translate(tx.DeleteItem(ctx, listID, itemID))
	})
}
