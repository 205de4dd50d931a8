package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/pkg/logger"
)

// SubscriptionSweeper moves lapsed premium subscriptions back to the free
// tier on a cron schedule so stored tiers match what entitlement reports
type SubscriptionSweeper struct {
	subs     subscription.Repository
	schedule string
	now      func() time.Time
	logger   *logger.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewSubscriptionSweeper creates a new subscription sweeper worker. schedule
// is a standard cron spec or descriptor such as "@hourly".
func NewSubscriptionSweeper(subs subscription.Repository, schedule string, log *logger.Logger) *SubscriptionSweeper {
	return &SubscriptionSweeper{
		subs:     subs,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Start runs one sweep and schedules the rest. Scheduled sweeps use ctx.
func (s *SubscriptionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("subscription sweeper is already running")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.Sweep(ctx)

	scheduler.Start()
	s.scheduler = scheduler

	s.logger.With("schedule", s.schedule).Info("Subscription sweeper started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish
func (s *SubscriptionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
	s.scheduler = nil

	s.logger.Info("Subscription sweeper stopped")
}

// Sweep performs one pass and returns the number of downgraded subscriptions
func (s *SubscriptionSweeper) Sweep(ctx context.Context) int64 {
	n, err := s.subs.ExpireLapsed(ctx, s.now().UTC())
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to expire lapsed subscriptions")
		return 0
	}
	if n > 0 {
		s.logger.With("count", n).Info("Expired lapsed subscriptions")
	}
	return n
}
