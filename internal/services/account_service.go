package services

import (
	"context"
	"time"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/entitlement"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/metrics"
)

// AccountService answers entitlement questions for a signed-in user
type AccountService struct {
	subs   subscription.Repository
	plans  plan.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(subs subscription.Repository, plans plan.Repository, log *logger.Logger) *AccountService {
	return &AccountService{subs: subs, plans: plans, logger: log, now: time.Now}
}

// subscription reads the user's subscription. A failed read is logged and
// reported as no subscription.
func (s *AccountService) subscription(ctx context.Context, userID string) *subscription.Subscription {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		logDegraded(s.logger, userID, "subscription_read", errors.UpstreamRead("subscription", err))
		return nil
	}
	return sub
}

// IsPremium reports whether the user currently has premium access
func (s *AccountService) IsPremium(ctx context.Context, userID string) bool {
	return entitlement.IsPremium(s.subscription(ctx, userID), s.now())
}

// Status returns the entitlement summary of the user
func (s *AccountService) Status(ctx context.Context, userID string) (entitlement.Status, error) {
	sub := s.subscription(ctx, userID)

	count, err := s.plans.CountByUser(ctx, userID)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{"user_id": userID}).ErrorWithErr(err, "Error counting habit plans")
		return entitlement.Status{}, errors.Internal("Failed to load usage", err)
	}

	return entitlement.Evaluate(sub, count, s.now()), nil
}

// logDegraded records a best-effort failure that the caller discards. Errors
// not marked as upstream read or write failures are logged at error level.
func logDegraded(log *logger.Logger, userID, operation string, err error) {
	metrics.RecordDegraded(operation)
	entry := log.WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": operation,
		"code":      errors.Code(err),
	})
	if !errors.IsDegradable(err) {
		entry.ErrorWithErr(err, "Discarded an unclassified error")
		return
	}
	entry.WarnWithErr(err, "Continuing without optional data")
}
