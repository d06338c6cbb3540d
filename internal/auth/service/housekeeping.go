package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/store"
)

// HousekeepingService periodically deletes authorizations whose tokens
// have both expired, so the authorization table does not grow unbounded.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}

	started atomic.Bool
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background. Call Stop to end it.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop ends the loop and waits for an in-progress cleanup to finish. It is a
// no-op if the loop was never started.
func (s *HousekeepingService) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup deletes fully expired authorizations and returns how many went.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	var deleted int64
	err := s.Store.WithTx(ctx, "housekeeping", func(ctx context.Context, tx store.Tx) error {
		n, err := tx.Authorizations().DeleteExpiredAuthorizations(ctx, s.Now().UTC())
		deleted = n
		return err
	})
	if err != nil {
		s.Logger.Error("failed to delete expired authorizations", "error", err)
		return 0
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted_authorizations", deleted)
	return deleted
}
