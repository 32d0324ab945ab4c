package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

const wishlistColumns = `id, owner_id, title, description, is_public, sort_order, due_date, created_at, updated_at`

func scanWishlist(row pgx.Row) (*models.Wishlist, error) {
	var w models.Wishlist
	err := row.Scan(
		&w.ID,
		&w.OwnerID,
		&w.Title,
		&w.Description,
		&w.IsPublic,
		&w.SortOrder,
		&w.DueDate,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWishlistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWishlist retrieves a wishlist by ID.
func (d *DB) GetWishlist(ctx context.Context, id uuid.UUID) (*models.Wishlist, error) {
	return scanWishlist(d.conn.QueryRow(ctx, `SELECT `+wishlistColumns+` FROM wishlists WHERE id = $1`, id))
}

// CreateWishlist inserts a wishlist.
func (d *DB) CreateWishlist(ctx context.Context, w *models.Wishlist) error {
	query := `
		INSERT INTO wishlists (owner_id, title, description, is_public, sort_order, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return d.conn.QueryRow(ctx, query,
		w.OwnerID,
		w.Title,
		w.Description,
		w.IsPublic,
		w.SortOrder,
		w.DueDate,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

// DeleteWishlist deletes a wishlist. Items, shares, public link, suggestions
// and contributions cascade.
func (d *DB) DeleteWishlist(ctx context.Context, id uuid.UUID) error {
	result, err := d.conn.Exec(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrWishlistNotFound
	}
	return nil
}

// GetDeleteImpact counts the users affected by deleting a wishlist: share
// holders, and distinct non-owner reservers, proposers and contributors.
func (d *DB) GetDeleteImpact(ctx context.Context, w *models.Wishlist) (*models.DeleteImpact, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM shares WHERE wishlist_id = $1),
			(SELECT COUNT(DISTINCT uid) FROM (
				SELECT reserved_by_id AS uid FROM wishlist_items WHERE wishlist_id = $1
				UNION
				SELECT contributed_by_id FROM wishlist_items WHERE wishlist_id = $1
				UNION
				SELECT c.user_id FROM item_contributions c
				JOIN wishlist_items i ON i.id = c.item_id
				WHERE i.wishlist_id = $1
			) affected WHERE uid IS NOT NULL AND uid <> $2)
	`
	var impact models.DeleteImpact
	if err := d.conn.QueryRow(ctx, query, w.ID, w.OwnerID).Scan(&impact.SharedWithCount, &impact.ContributorsCount); err != nil {
		return nil, err
	}
	return &impact, nil
}
