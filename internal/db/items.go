package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

// itemColumns is the standard column list for item queries.
const itemColumns = `id, wishlist_id, title, description, link_url, image_url, price, currency, position,
	reservation_status, reserved_by_id, reserved_at, reservation_message, contributed_by_id, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID,
		&item.WishlistID,
		&item.Title,
		&item.Description,
		&item.LinkURL,
		&item.ImageURL,
		&item.Price,
		&item.Currency,
		&item.Position,
		&item.Status,
		&item.ReservedByID,
		&item.ReservedAt,
		&item.ReservationMessage,
		&item.ContributedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns the items of a wishlist ordered by position, ties broken
// by insertion.
func (d *DB) ListItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error) {
	return d.queryItems(ctx,
		`SELECT `+itemColumns+` FROM wishlist_items WHERE wishlist_id = $1 ORDER BY position, created_at, id`,
		wishlistID,
	)
}

// LockWishlistItems locks the wishlist row and all of its items until the
// surrounding transaction ends, then returns the items. While held, no item
// can be added to the list and no contribution can reference its items, so
// reads that follow see every row a cascading delete will remove.
func (d *DB) LockWishlistItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error) {
	var id uuid.UUID
	err := d.conn.QueryRow(ctx, `SELECT id FROM wishlists WHERE id = $1 FOR UPDATE`, wishlistID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWishlistNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.queryItems(ctx,
		`SELECT `+itemColumns+` FROM wishlist_items WHERE wishlist_id = $1 ORDER BY position, created_at, id FOR UPDATE`,
		wishlistID,
	)
}

func (d *DB) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := d.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem retrieves an item that belongs to the given wishlist.
func (d *DB) GetItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error) {
	return scanItem(d.conn.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM wishlist_items WHERE id = $1 AND wishlist_id = $2`,
		itemID, wishlistID,
	))
}

// LockItem reads an item and holds a row lock on it until the surrounding
// transaction ends. Concurrent claim transitions on the same item serialize here.
func (d *DB) LockItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error) {
	return scanItem(d.conn.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM wishlist_items WHERE id = $1 AND wishlist_id = $2 FOR UPDATE`,
		itemID, wishlistID,
	))
}

// UpdateItemClaim persists the claim fields of item.
func (d *DB) UpdateItemClaim(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE wishlist_items
		SET reservation_status = $2, reserved_by_id = $3, reserved_at = $4, reservation_message = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := d.conn.QueryRow(ctx, query,
		item.ID,
		item.Status,
		item.ReservedByID,
		item.ReservedAt,
		item.ReservationMessage,
	).Scan(&item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrItemNotFound
	}
	return err
}

// CreateItem appends an item at the end of its wishlist.
func (d *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO wishlist_items (wishlist_id, title, description, link_url, image_url, price, currency, contributed_by_id, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM wishlist_items WHERE wishlist_id = $1))
		RETURNING id, position, reservation_status, created_at, updated_at
	`
	return d.conn.QueryRow(ctx, query,
		item.WishlistID,
		item.Title,
		item.Description,
		item.LinkURL,
		item.ImageURL,
		item.Price,
		item.Currency,
		item.ContributedByID,
	).Scan(&item.ID, &item.Position, &item.Status, &item.CreatedAt, &item.UpdatedAt)
}

// DeleteItem deletes an item. Its contributions cascade.
func (d *DB) DeleteItem(ctx context.Context, wishlistID, itemID uuid.UUID) error {
	result, err := d.conn.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND wishlist_id = $2`, itemID, wishlistID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
