package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wishlist/internal/models"
)

// CreateNotifications inserts notifications in one round trip and fills in
// their IDs.
func (d *DB) CreateNotifications(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (user_id, kind, title, body, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	batch := &pgx.Batch{}
	for _, n := range ns {
		batch.Queue(query, n.UserID, n.Kind, n.Title, n.Body, n.Payload)
	}

	br := d.sendBatch(ctx, batch)
	defer br.Close()

	for i := range ns {
		if err := br.QueryRow().Scan(&ns[i].ID, &ns[i].CreatedAt); err != nil {
			return err
		}
	}
	return br.Close()
}

func (d *DB) sendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if tx, ok := d.conn.(pgx.Tx); ok {
		return tx.SendBatch(ctx, b)
	}
	return d.Pool.SendBatch(ctx, b)
}

// ListNotifications returns a user's notifications, newest first.
func (d *DB) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT id, user_id, kind, title, body, payload, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Payload, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead sets read_at on one of the user's notifications.
// Already-read notifications keep their original timestamp.
func (d *DB) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, now time.Time) error {
	var readAt time.Time
	err := d.conn.QueryRow(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
		RETURNING read_at
	`, id, userID, now).Scan(&readAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllNotificationsRead marks every unread notification of the user read.
func (d *DB) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result, err := d.conn.Exec(ctx,
		`UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`,
		userID, now,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
