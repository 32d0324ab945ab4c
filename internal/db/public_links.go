package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

const publicLinkColumns = `id, wishlist_id, token, expires_at, max_views, view_count, created_at, updated_at`

func scanPublicLink(row pgx.Row) (*models.PublicLink, error) {
	var l models.PublicLink
	err := row.Scan(&l.ID, &l.WishlistID, &l.Token, &l.ExpiresAt, &l.MaxViews, &l.ViewCount, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPublicLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetPublicLinkByToken retrieves a public link by its token.
func (d *DB) GetPublicLinkByToken(ctx context.Context, token string) (*models.PublicLink, error) {
	return scanPublicLink(d.conn.QueryRow(ctx, `SELECT `+publicLinkColumns+` FROM public_links WHERE token = $1`, token))
}

// GetPublicLinkByWishlist retrieves the public link of a wishlist.
func (d *DB) GetPublicLinkByWishlist(ctx context.Context, wishlistID uuid.UUID) (*models.PublicLink, error) {
	return scanPublicLink(d.conn.QueryRow(ctx, `SELECT `+publicLinkColumns+` FROM public_links WHERE wishlist_id = $1`, wishlistID))
}

// UpsertPublicLink creates the wishlist's link with token, or updates the
// limits of the existing one. A nil limit leaves the stored value unchanged;
// the token and view count of an existing link are kept.
func (d *DB) UpsertPublicLink(ctx context.Context, wishlistID uuid.UUID, token string, expiresAt *time.Time, maxViews *int) (*models.PublicLink, error) {
	query := `
		INSERT INTO public_links (wishlist_id, token, expires_at, max_views)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wishlist_id) DO UPDATE SET
			expires_at = COALESCE(EXCLUDED.expires_at, public_links.expires_at),
			max_views = COALESCE(EXCLUDED.max_views, public_links.max_views),
			updated_at = NOW()
		RETURNING ` + publicLinkColumns
	return scanPublicLink(d.conn.QueryRow(ctx, query, wishlistID, token, expiresAt, maxViews))
}

// DeletePublicLink revokes the public link of a wishlist.
func (d *DB) DeletePublicLink(ctx context.Context, wishlistID uuid.UUID) error {
	result, err := d.conn.Exec(ctx, `DELETE FROM public_links WHERE wishlist_id = $1`, wishlistID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPublicLinkNotFound
	}
	return nil
}

// CountPublicLinkView increments the view count of a live link and returns the
// updated row. The guard and the increment are one statement, so concurrent
// views can never push the count past max_views. Returns ErrPublicLinkNotFound
// when the link is missing, expired or exhausted; callers re-read to tell
// which.
func (d *DB) CountPublicLinkView(ctx context.Context, token string, now time.Time) (*models.PublicLink, error) {
	query := `
		UPDATE public_links
		SET view_count = view_count + 1
		WHERE token = $1
			AND (expires_at IS NULL OR expires_at >= $2)
			AND (max_views IS NULL OR view_count < max_views)
		RETURNING ` + publicLinkColumns
	return scanPublicLink(d.conn.QueryRow(ctx, query, token, now))
}

// DeleteExpiredPublicLinks removes links that expired before cutoff.
func (d *DB) DeleteExpiredPublicLinks(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.conn.Exec(ctx, `DELETE FROM public_links WHERE expires_at IS NOT NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
