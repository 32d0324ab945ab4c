package service

import (
	"context"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/models"
	"wishlist/internal/notify"
)

// DeleteList removes a list and everything on it. Paid contributions are
// refunded and every other affected user is told the list is gone.
func (s *Service) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	return s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		grant, err := access.NewResolver(tx).ResolveOwner(ctx, userID, listID, "Only owner can delete the wishlist")
		if err != nil {
			return err
		}
		items, err := tx.LockWishlistItems(ctx, listID)
		if err != nil {
			return err
		}
		entries, err := tx.ListWishlistContributions(ctx, listID)
		if err != nil {
			return err
		}
		shares, err := tx.ListShares(ctx, listID)
		if err != nil {
			return err
		}

		out.Notify(notify.ListDeleted(notify.ListDeletion{
			List:    grant.List,
			Items:   items,
			Entries: entries,
			Shares:  shares,
			Actor:   userID,
		})...)

		return translate(tx.DeleteWishlist(ctx, listID))
	})
}

// DeleteImpact reports how many people deleting the list would affect.
func (s *Service) DeleteImpact(ctx context.Context, userID, listID uuid.UUID) (*models.DeleteImpact, error) {
	grant, err := access.NewResolver(s.store).ResolveOwner(ctx, userID, listID, "Only owner can view delete impact")
	if err != nil {
		return nil, err
	}
	return s.store.GetDeleteImpact(ctx, grant.List)
}
