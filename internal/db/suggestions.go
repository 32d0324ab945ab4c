package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

const suggestionColumns = `id, wishlist_id, suggested_by_id, title, link_url, message, status, created_at, updated_at`

func scanSuggestion(row pgx.Row) (*models.Suggestion, error) {
	var s models.Suggestion
	err := row.Scan(&s.ID, &s.WishlistID, &s.SuggestedByID, &s.Title, &s.LinkURL, &s.Message, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSuggestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSuggestion inserts a pending suggestion.
func (d *DB) CreateSuggestion(ctx context.Context, s *models.Suggestion) error {
	query := `
		INSERT INTO wishlist_suggestions (wishlist_id, suggested_by_id, title, link_url, message, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, status, created_at, updated_at
	`
	return d.conn.QueryRow(ctx, query,
		s.WishlistID,
		s.SuggestedByID,
		s.Title,
		s.LinkURL,
		s.Message,
	).Scan(&s.ID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// ListPendingSuggestions returns a wishlist's pending suggestions, newest first.
func (d *DB) ListPendingSuggestions(ctx context.Context, wishlistID uuid.UUID) ([]models.Suggestion, error) {
	rows, err := d.conn.Query(ctx,
		`SELECT `+suggestionColumns+` FROM wishlist_suggestions
		WHERE wishlist_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`,
		wishlistID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ResolveSuggestion moves a pending suggestion to status and returns it. Only
// pending suggestions match, so a resolved one is reported as not found.
func (d *DB) ResolveSuggestion(ctx context.Context, wishlistID, id uuid.UUID, status string) (*models.Suggestion, error) {
	return scanSuggestion(d.conn.QueryRow(ctx, `
		UPDATE wishlist_suggestions SET status = $3, updated_at = NOW()
		WHERE id = $1 AND wishlist_id = $2 AND status = 'pending'
		RETURNING `+suggestionColumns,
		id, wishlistID, status,
	))
}
