// Package service runs the list mutations: each one authorizes the caller,
// applies its change in one transaction, writes notifications alongside it
// and broadcasts only after commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"wishlist/internal/access"
	"wishlist/internal/apperr"
	"wishlist/internal/db"
	"wishlist/internal/ledger"
	"wishlist/internal/models"
	"wishlist/internal/notify"
)

// Store is the persistence the service needs. InTx hands fn a Store bound to
// one transaction.
type Store interface {
	access.Store
	notify.Writer

	InTx(ctx context.Context, fn func(tx Store) error) error

	ListItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error)
	GetItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error)
	LockItem(ctx context.Context, wishlistID, itemID uuid.UUID) (*models.Item, error)
	LockWishlistItems(ctx context.Context, wishlistID uuid.UUID) ([]models.Item, error)
	UpdateItemClaim(ctx context.Context, item *models.Item) error
	CreateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, wishlistID, itemID uuid.UUID) error

	DeleteWishlist(ctx context.Context, id uuid.UUID) error
	GetDeleteImpact(ctx context.Context, w *models.Wishlist) (*models.DeleteImpact, error)
	ListShares(ctx context.Context, wishlistID uuid.UUID) ([]models.Share, error)

	GetPublicLinkByWishlist(ctx context.Context, wishlistID uuid.UUID) (*models.PublicLink, error)
	UpsertPublicLink(ctx context.Context, wishlistID uuid.UUID, token string, expiresAt *time.Time, maxViews *int) (*models.PublicLink, error)
	DeletePublicLink(ctx context.Context, wishlistID uuid.UUID) error

	CreateContribution(ctx context.Context, c *models.Contribution) error
	ListContributions(ctx context.Context, itemIDs []uuid.UUID) ([]models.Contribution, error)
	ListWishlistContributions(ctx context.Context, wishlistID uuid.UUID) ([]models.Contribution, error)
	ListContributionsWithUsers(ctx context.Context, itemID uuid.UUID) ([]models.ContributionWithUser, error)

	CreateActivity(ctx context.Context, a *models.Activity) error

	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID, now time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)

	CreateSuggestion(ctx context.Context, s *models.Suggestion) error
	ListPendingSuggestions(ctx context.Context, wishlistID uuid.UUID) ([]models.Suggestion, error)
	ResolveSuggestion(ctx context.Context, wishlistID, id uuid.UUID, status string) (*models.Suggestion, error)
}

// PGStore adapts *db.DB to Store.
type PGStore struct {
	*db.DB
}

// InTx runs fn in one database transaction.
func (s PGStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.DB.InTx(ctx, func(tx *db.DB) error {
		return fn(PGStore{DB: tx})
	})
}

// Options tunes a Service.
type Options struct {
	PublicLinkTokenLength int
	NotificationLimit     int
	Logger                *slog.Logger
}

// Service implements the list operations.
type Service struct {
	store       Store
	fanout      *notify.Fanout
	tokenLength int
	notifyLimit int
	now         func() time.Time
	logger      *slog.Logger
}

// New creates a service.
func New(store Store, fanout *notify.Fanout, opts Options) *Service {
	if opts.PublicLinkTokenLength <= 0 {
		opts.PublicLinkTokenLength = 32
	}
	if opts.NotificationLimit <= 0 {
		opts.NotificationLimit = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		store:       store,
		fanout:      fanout,
		tokenLength: opts.PublicLinkTokenLength,
		notifyLimit: opts.NotificationLimit,
		now:         time.Now,
		logger:      opts.Logger,
	}
}

// mutate runs fn in a transaction, persists the outbox notifications inside
// it and delivers the outbox events once it has committed.
func (s *Service) mutate(ctx context.Context, fn func(tx Store, out *notify.Outbox) error) error {
	var out notify.Outbox
	err := s.store.InTx(ctx, func(tx Store) error {
		if err := fn(tx, &out); err != nil {
			return err
		}
		return s.fanout.Persist(ctx, tx, &out)
	})
	if err != nil {
		return err
	}
	s.fanout.Deliver(&out)
	return nil
}

// views renders items with their contribution totals.
func views(ctx context.Context, st Store, items []models.Item, hideIdentity bool) ([]models.ItemView, error) {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	entries, err := st.ListContributions(ctx, ids)
	if err != nil {
		return nil, err
	}
	totals := ledger.AggregateByItem(ids, entries)

	out := make([]models.ItemView, len(items))
	for i := range items {
		out[i] = models.NewItemView(items[i], totals[items[i].ID], hideIdentity)
	}
	return out, nil
}

func view(ctx context.Context, st Store, item *models.Item, hideIdentity bool) (*models.ItemView, error) {
	vs, err := views(ctx, st, []models.Item{*item}, hideIdentity)
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

// translate maps persistence sentinels onto domain errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrItemNotFound):
		return apperr.NotFound("Item not found")
	case errors.Is(err, db.ErrWishlistNotFound):
		return apperr.NotFound("Wishlist not found")
	case errors.Is(err, db.ErrSuggestionNotFound):
		return apperr.NotFound("Suggestion not found")
	case errors.Is(err, db.ErrNotificationNotFound):
		return apperr.NotFound("Notification not found")
	case errors.Is(err, db.ErrPublicLinkNotFound):
		return apperr.NotFound("Public link not found")
	}
	return err
}
