// Package access decides what a caller may do with a wishlist.
package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/db"
	"wishlist/internal/models"
)

// Role is the caller's standing on a list.
type Role int

// Roles
const (
	RoleOwner Role = iota + 1
	RoleEditor
	RoleViewer
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleEditor:
		return models.ShareEditor
	case RoleViewer:
		return models.ShareViewer
	}
	return "none"
}

// CanEdit reports whether the role may modify the list.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// Grant is a resolved member access.
type Grant struct {
	List *models.Wishlist
	Role Role
}

// IsOwner reports whether the grant is the owner's.
func (g *Grant) IsOwner() bool { return g.Role == RoleOwner }

// PublicGrant is a resolved public-link access.
type PublicGrant struct {
	List *models.Wishlist
	Link *models.PublicLink
}

// Store is the persistence the resolver needs.
type Store interface {
	GetWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error)
	GetShare(ctx context.Context, wishlistID, userID uuid.UUID) (*models.Share, error)
	GetPublicLinkByToken(ctx context.Context, token string) (*models.PublicLink, error)
	CountPublicLinkView(ctx context.Context, token string, now time.Time) (*models.PublicLink, error)
}

// Resolver answers access questions against a Store.
type Resolver struct {
	store Store
	now   func() time.Time
}

// NewResolver creates a resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve returns the list and the caller's role on it. It fails with NotFound
// when the list does not exist and Forbidden when the caller has no share, or
// needs to edit but only holds a viewer share.
func (r *Resolver) Resolve(ctx context.Context, userID, listID uuid.UUID, requireEdit bool) (*Grant, error) {
	list, err := r.store.GetWishlist(ctx, listID)
	if errors.Is(err, db.ErrWishlistNotFound) {
		return nil, apperr.NotFound("Wishlist not found")
	}
	if err != nil {
		return nil, err
	}
	if list.IsOwner(userID) {
		return &Grant{List: list, Role: RoleOwner}, nil
	}

	share, err := r.store.GetShare(ctx, listID, userID)
	if errors.Is(err, db.ErrShareNotFound) {
		return nil, apperr.Forbidden("Not allowed to access this wishlist")
	}
	if err != nil {
		return nil, err
	}

	role := RoleViewer
	if share.Role == models.ShareEditor {
		role = RoleEditor
	}
	if requireEdit && !role.CanEdit() {
		return nil, apperr.Forbidden("Editor role required")
	}
	return &Grant{List: list, Role: role}, nil
}

// ResolveOwner resolves the list and requires the caller to own it.
func (r *Resolver) ResolveOwner(ctx context.Context, userID, listID uuid.UUID, msg string) (*Grant, error) {
	g, err := r.Resolve(ctx, userID, listID, false)
	if err != nil {
		return nil, err
	}
	if !g.IsOwner() {
		return nil, apperr.Forbidden(msg)
	}
	return g, nil
}

// ResolvePublic resolves a public token and counts exactly one view. The count
// is guarded in storage, so concurrent callers can never exceed max_views.
func (r *Resolver) ResolvePublic(ctx context.Context, token string) (*PublicGrant, error) {
	if _, err := r.ValidatePublic(ctx, token); err != nil {
		return nil, err
	}

	link, err := r.store.CountPublicLinkView(ctx, token, r.now())
	if errors.Is(err, db.ErrPublicLinkNotFound) {
		// Lost a race with another view or with expiry; report why.
		if _, verr := r.ValidatePublic(ctx, token); verr != nil {
			return nil, verr
		}
		return nil, apperr.Forbidden("Link view limit reached")
	}
	if err != nil {
		return nil, err
	}

	return r.publicGrant(ctx, link)
}

// ValidatePublic resolves a public token without counting a view.
func (r *Resolver) ValidatePublic(ctx context.Context, token string) (*PublicGrant, error) {
	if token == "" {
		return nil, apperr.NotFound("Invalid or expired link")
	}
	link, err := r.store.GetPublicLinkByToken(ctx, token)
	if errors.Is(err, db.ErrPublicLinkNotFound) {
		return nil, apperr.NotFound("Invalid or expired link")
	}
	if err != nil {
		return nil, err
	}
	if link.Expired(r.now()) {
		return nil, apperr.Forbidden("Link expired")
	}
	if link.Exhausted() {
		return nil, apperr.Forbidden("Link view limit reached")
	}
	return r.publicGrant(ctx, link)
}

func (r *Resolver) publicGrant(ctx context.Context, link *models.PublicLink) (*PublicGrant, error) {
	list, err := r.store.GetWishlist(ctx, link.WishlistID)
	if errors.Is(err, db.ErrWishlistNotFound) {
		return nil, apperr.NotFound("Wishlist not found")
	}
	if err != nil {
		return nil, err
	}
	return &PublicGrant{List: list, Link: link}, nil
}

// CanView reports whether the user may watch the list live.
func (r *Resolver) CanView(ctx context.Context, userID, listID uuid.UUID) error {
	_, err := r.Resolve(ctx, userID, listID, false)
	return err
}

// CheckPublic returns the list a public token opens, without counting a view.
func (r *Resolver) CheckPublic(ctx context.Context, token string) (uuid.UUID, error) {
	g, err := r.ValidatePublic(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return g.List.ID, nil
}
