package service

import (
	"context"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/ledger"
	"wishlist/internal/metrics"
	"wishlist/internal/models"
	"wishlist/internal/notify"
	"wishlist/internal/realtime"
)

// ContributionInput is a new ledger entry.
type ContributionInput struct {
	Amount float64
	Status models.ContributionStatus
}

// AddContribution appends a contribution by a list member. The owner cannot
// contribute to their own list.
func (s *Service) AddContribution(ctx context.Context, userID, listID, itemID uuid.UUID, in ContributionInput) (*models.ItemView, error) {
	return s.contribute(ctx, userID, itemID, in, func(tx Store) (*models.Wishlist, bool, error) {
		grant, err := access.NewResolver(tx).Resolve(ctx, userID, listID, false)
		if err != nil {
			return nil, false, err
		}
		return grant.List, grant.IsOwner(), nil
	})
}

// AddContributionPublic appends a contribution through a public link. No view
// is counted.
func (s *Service) AddContributionPublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in ContributionInput) (*models.ItemView, error) {
	return s.contribute(ctx, userID, itemID, in, func(tx Store) (*models.Wishlist, bool, error) {
		grant, err := access.NewResolver(tx).ValidatePublic(ctx, token)
		if err != nil {
			return nil, false, err
		}
		return grant.List, true, nil
	})
}

func (s *Service) contribute(ctx context.Context, userID, itemID uuid.UUID, in ContributionInput, authorize authorizeFunc) (*models.ItemView, error) {
	if in.Status == "" {
		in.Status = models.ContributionPledged
	}

	var result *models.ItemView
	err := s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		list, hide, err := authorize(tx)
		if err != nil {
			return err
		}
		if err := ledger.ValidateNew(list, userID, in.Amount, in.Status); err != nil {
			return err
		}
		item, err := tx.GetItem(ctx, list.ID, itemID)
		if err != nil {
			return translate(err)
		}

		if err := tx.CreateContribution(ctx, &models.Contribution{
			ItemID: item.ID,
			UserID: userID,
			Amount: ledger.Round2(in.Amount),
			Status: in.Status,
		}); err != nil {
			return err
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
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordContribution(string(in.Status))
	return result, nil
}

// Contributions returns an item's ledger with contributor names. Any list
// member may read it, including the owner.
func (s *Service) Contributions(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ContributionBreakdown, error) {
	if _, err := access.NewResolver(s.store).Resolve(ctx, userID, listID, false); err != nil {
		return nil, err
	}
	if _, err := s.store.GetItem(ctx, listID, itemID); err != nil {
		return nil, translate(err)
	}
	entries, err := s.store.ListContributionsWithUsers(ctx, itemID)
	if err != nil {
		return nil, err
	}
	b := ledger.Breakdown(entries, userID)
	return &b, nil
}
