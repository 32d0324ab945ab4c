package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

// GetShare retrieves the share a user holds on a wishlist.
func (d *DB) GetShare(ctx context.Context, wishlistID, userID uuid.UUID) (*models.Share, error) {
	var s models.Share
	err := d.conn.QueryRow(ctx,
		`SELECT id, wishlist_id, user_id, role, created_at FROM shares WHERE wishlist_id = $1 AND user_id = $2`,
		wishlistID, userID,
	).Scan(&s.ID, &s.WishlistID, &s.UserID, &s.Role, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListShares returns every share on a wishlist.
func (d *DB) ListShares(ctx context.Context, wishlistID uuid.UUID) ([]models.Share, error) {
	rows, err := d.conn.Query(ctx,
		`SELECT id, wishlist_id, user_id, role, created_at FROM shares WHERE wishlist_id = $1 ORDER BY created_at`,
		wishlistID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var s models.Share
		if err := rows.Scan(&s.ID, &s.WishlistID, &s.UserID, &s.Role, &s.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

// CreateShare grants a user a role on a wishlist.
func (d *DB) CreateShare(ctx context.Context, s *models.Share) error {
	err := d.conn.QueryRow(ctx,
		`INSERT INTO shares (wishlist_id, user_id, role) VALUES ($1, $2, $3) RETURNING id, created_at`,
		s.WishlistID, s.UserID, s.Role,
	).Scan(&s.ID, &s.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateShare
	}
	return err
}
