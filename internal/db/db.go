package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wishlist/migrations"
)

// dbtx is satisfied by both the pool and an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a pgxpool connection pool. Inside InTx every query runs on the
// transaction instead.
type DB struct {
	Pool *pgxpool.Pool
	conn dbtx
}

// New creates a new database connection pool, waiting for the server to accept
// connections.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	err = retry.Do(
		func() error {
			return pool.Ping(ctx)
		},
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("database not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, conn: pool}, nil
}

// InTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise. Nested calls join the outer transaction.
func (d *DB) InTx(ctx context.Context, fn func(tx *DB) error) error {
	if _, ok := d.conn.(pgx.Tx); ok {
		return fn(d)
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to roll back transaction", "error", err)
		}
	}()

	if err := fn(&DB{Pool: d.Pool, conn: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// Ping checks the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
