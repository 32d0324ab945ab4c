package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/apperr"
	"wishlist/internal/db"
	"wishlist/internal/models"
)

// PublicLinkInput sets the limits of a public link. Nil leaves a limit as it is.
type PublicLinkInput struct {
	ExpiresAt *time.Time
	MaxViews  *int
}

// PublicView is what a public-link visitor sees.
type PublicView struct {
	Wishlist *models.Wishlist  `json:"wishlist"`
	Items    []models.ItemView `json:"items"`
}

// SharePublicly creates the list's public link, or updates the limits of the
// existing one. The token of an existing link is kept.
func (s *Service) SharePublicly(ctx context.Context, userID, listID uuid.UUID, in PublicLinkInput) (*models.PublicLink, error) {
	if in.MaxViews != nil && *in.MaxViews < 1 {
		return nil, apperr.Validation("max_views must be at least 1")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, apperr.Validation("expires_at must be in the future")
	}
	if _, err := access.NewResolver(s.store).ResolveOwner(ctx, userID, listID, "Only owner can manage the public link"); err != nil {
		return nil, err
	}
	token, err := newToken(s.tokenLength)
	if err != nil {
		return nil, err
	}
	return s.store.UpsertPublicLink(ctx, listID, token, in.ExpiresAt, in.MaxViews)
}

// PublicLink returns the list's public link, or nil when it has none.
func (s *Service) PublicLink(ctx context.Context, userID, listID uuid.UUID) (*models.PublicLink, error) {
	if _, err := access.NewResolver(s.store).ResolveOwner(ctx, userID, listID, "Only owner can manage the public link"); err != nil {
		return nil, err
	}
	link, err := s.store.GetPublicLinkByWishlist(ctx, listID)
	if errors.Is(err, db.ErrPublicLinkNotFound) {
		return nil, nil
	}
	return link, err
}

// RevokePublicLink deletes the list's public link.
func (s *Service) RevokePublicLink(ctx context.Context, userID, listID uuid.UUID) error {
	if _, err := access.NewResolver(s.store).ResolveOwner(ctx, userID, listID, "Only owner can manage the public link"); err != nil {
		return err
	}
	return translate(s.store.DeletePublicLink(ctx, listID))
}

// ViewPublic resolves a public token, counting one view, and returns the list
// with reservation identity hidden.
func (s *Service) ViewPublic(ctx context.Context, token string) (*PublicView, error) {
	grant, err := access.NewResolver(s.store).ResolvePublic(ctx, token)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, grant.List.ID)
	if err != nil {
		return nil, err
	}
	vs, err := views(ctx, s.store, items, true)
	if err != nil {
		return nil, err
	}
	return &PublicView{Wishlist: grant.List, Items: vs}, nil
}

// newToken returns a URL-safe random token of n characters.
func newToken(n int) (string, error) {
	b := make([]byte, (n*6+7)/8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
