package jobs

import (
	"context"
	"log/slog"
	"time"
)

// LinkStore deletes public links that expired before cutoff.
type LinkStore interface {
	DeleteExpiredPublicLinks(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner forgets stale connection-rate windows.
type Pruner interface {
	Prune() int
}

// Sweeper periodically removes long-expired public links and stale
// connection-rate windows.
type Sweeper struct {
	links    LinkStore
	limiter  Pruner
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSweeper creates a new sweeper. Links are kept for grace after they expire
// so owners still see them as expired for a while.
func NewSweeper(links LinkStore, limiter Pruner, interval, grace time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		links:    links,
		limiter:  limiter,
		interval: interval,
		grace:    grace,
		now:      time.Now,
		logger:   logger.With("job", "sweeper"),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", "interval", s.interval, "grace", s.grace)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.links.DeleteExpiredPublicLinks(ctx, s.now().Add(-s.grace))
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("failed to delete expired public links", "error", err)
		}
	} else if deleted > 0 {
		s.logger.Info("deleted expired public links", "count", deleted)
	}

	if s.limiter != nil {
		if n := s.limiter.Prune(); n > 0 {
			s.logger.Debug("pruned connection windows", "count", n)
		}
	}
}
