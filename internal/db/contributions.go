package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

// contributionColumns selects a contribution joined with its item's currency.
const contributionColumns = `c.id, c.item_id, c.user_id, c.amount, c.status, COALESCE(TRIM(i.currency), ''), c.created_at`

func scanContributions(rows pgx.Rows) ([]models.Contribution, error) {
	defer rows.Close()

	var out []models.Contribution
	for rows.Next() {
		var c models.Contribution
		if err := rows.Scan(&c.ID, &c.ItemID, &c.UserID, &c.Amount, &c.Status, &c.Currency, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateContribution appends a ledger entry.
func (d *DB) CreateContribution(ctx context.Context, c *models.Contribution) error {
	query := `
		INSERT INTO item_contributions (item_id, user_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return d.conn.QueryRow(ctx, query, c.ItemID, c.UserID, c.Amount, c.Status).Scan(&c.ID, &c.CreatedAt)
}

// ListContributions returns the ledger entries of the given items, oldest first.
func (d *DB) ListContributions(ctx context.Context, itemIDs []uuid.UUID) ([]models.Contribution, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	rows, err := d.conn.Query(ctx, `
		SELECT `+contributionColumns+`
		FROM item_contributions c
		JOIN wishlist_items i ON i.id = c.item_id
		WHERE c.item_id = ANY($1)
		ORDER BY c.created_at, c.id
	`, itemIDs)
	if err != nil {
		return nil, err
	}
	return scanContributions(rows)
}

// ListWishlistContributions returns every ledger entry on a wishlist's items.
func (d *DB) ListWishlistContributions(ctx context.Context, wishlistID uuid.UUID) ([]models.Contribution, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT `+contributionColumns+`
		FROM item_contributions c
		JOIN wishlist_items i ON i.id = c.item_id
		WHERE i.wishlist_id = $1
		ORDER BY c.created_at, c.id
	`, wishlistID)
	if err != nil {
		return nil, err
	}
	return scanContributions(rows)
}

// ListContributionsWithUsers returns an item's entries with contributor names.
func (d *DB) ListContributionsWithUsers(ctx context.Context, itemID uuid.UUID) ([]models.ContributionWithUser, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT `+contributionColumns+`, COALESCE(NULLIF(TRIM(u.display_name), ''), u.email)
		FROM item_contributions c
		JOIN wishlist_items i ON i.id = c.item_id
		JOIN users u ON u.id = c.user_id
		WHERE c.item_id = $1
		ORDER BY c.created_at, c.id
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ContributionWithUser
	for rows.Next() {
		var c models.ContributionWithUser
		if err := rows.Scan(&c.ID, &c.ItemID, &c.UserID, &c.Amount, &c.Status, &c.Currency, &c.CreatedAt, &c.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
