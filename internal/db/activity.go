package db

import (
	"context"

	"wishlist/internal/models"
)

// CreateActivity appends an audit record.
func (d *DB) CreateActivity(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activity (wishlist_id, user_id, item_id, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return d.conn.QueryRow(ctx, query, a.WishlistID, a.UserID, a.ItemID, a.Kind).Scan(&a.ID, &a.CreatedAt)
}
