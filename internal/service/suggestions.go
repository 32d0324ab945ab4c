package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/apperr"
	"wishlist/internal/models"
	"wishlist/internal/notify"
	"wishlist/internal/realtime"
)

// NewSuggestion is the input for Suggest.
type NewSuggestion struct {
	Title   string
	LinkURL *string
	Message *string
}

// Suggest proposes an item through a public link. The caller is optional.
func (s *Service) Suggest(ctx context.Context, caller *uuid.UUID, token string, in NewSuggestion) (*models.Suggestion, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}

	var created *models.Suggestion
	err := s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		grant, err := access.NewResolver(tx).ValidatePublic(ctx, token)
		if err != nil {
			return err
		}
		sg := &models.Suggestion{
			WishlistID:    grant.List.ID,
			SuggestedByID: caller,
			Title:         title,
			LinkURL:       in.LinkURL,
			Message:       in.Message,
			Status:        models.SuggestionPending,
		}
		if err := tx.CreateSuggestion(ctx, sg); err != nil {
			return err
		}

		if caller == nil || !grant.List.IsOwner(*caller) {
			out.Notify(notify.SuggestionCreated(grant.List, sg))
		}
		out.Broadcast(grant.List.ID, realtime.EventSuggestionAdded, map[string]any{"suggestion": sg})
		created = sg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Suggestions lists the pending suggestions of the owner's list.
func (s *Service) Suggestions(ctx context.Context, userID, listID uuid.UUID) ([]models.Suggestion, error) {
	if _, err := access.NewResolver(s.store).ResolveOwner(ctx, userID, listID, "Only owner can view suggestions"); err != nil {
		return nil, err
	}
	return s.store.ListPendingSuggestions(ctx, listID)
}

// AcceptSuggestion turns a pending suggestion into an item at the end of the
// list and tells the suggester.
func (s *Service) AcceptSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) (*models.ItemView, error) {
	var created *models.Item
	err := s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		grant, err := access.NewResolver(tx).ResolveOwner(ctx, userID, listID, "Only owner can accept suggestions")
		if err != nil {
			return err
		}
		sg, err := tx.ResolveSuggestion(ctx, listID, suggestionID, models.SuggestionAccepted)
		if err != nil {
			return translate(err)
		}

		item := &models.Item{
			WishlistID:      listID,
			Title:           sg.Title,
			Description:     sg.Message,
			LinkURL:         sg.LinkURL,
			Status:          models.ClaimAvailable,
			ContributedByID: sg.SuggestedByID,
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

		if n, ok := notify.SuggestionAccepted(grant.List, sg); ok {
			out.Notify(n)
		}
		out.Broadcast(listID, realtime.EventSuggestionRemoved, map[string]any{"suggestion_id": sg.ID})
		out.Broadcast(listID, realtime.EventItemAdded, map[string]any{
			"item": models.NewItemView(*item, models.Totals{}, true),
		})
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := models.NewItemView(*created, models.Totals{}, true)
	return &v, nil
}

// RejectSuggestion discards a pending suggestion.
func (s *Service) RejectSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) error {
	return s.mutate(ctx, func(tx Store, out *notify.Outbox) error {
		if _, err := access.NewResolver(tx).ResolveOwner(ctx, userID, listID, "Only owner can reject suggestions"); err != nil {
			return err
		}
		sg, err := tx.ResolveSuggestion(ctx, listID, suggestionID, models.SuggestionRejected)
		if err != nil {
			return translate(err)
		}
		out.Broadcast(listID, realtime.EventSuggestionRemoved, map[string]any{"suggestion_id": sg.ID})
		return nil
	})
}
