package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

const userColumns = `id, email, COALESCE(display_name, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(d.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(d.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// CreateUser inserts a user. Used by seeding and tests; account registration
// lives elsewhere.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, display_name)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at, updated_at
	`
	return d.conn.QueryRow(ctx, query, user.Email, user.DisplayName).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}
