package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

// GetByUserID returns nil, nil when the user has no subscription row
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	defer observe("select", "subscriptions", time.Now())
	query := `
		SELECT user_id, tier, current_period_end, updated_at
		FROM subscriptions WHERE user_id = $1
	`

	var sub subscription.Subscription
	var periodEnd sql.NullInt64
	var updatedAt int64

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&sub.UserID, &sub.Tier, &periodEnd, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}

	if periodEnd.Valid {
		end := fromMicros(periodEnd.Int64)
		sub.CurrentPeriodEnd = &end
	}
	sub.UpdatedAt = fromMicros(updatedAt)
	return &sub, nil
}

// Upsert creates or replaces a subscription
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	defer observe("upsert", "subscriptions", time.Now())
	sub.UpdatedAt = time.Now().UTC()

	var periodEnd sql.NullInt64
	if sub.CurrentPeriodEnd != nil {
		periodEnd = sql.NullInt64{Int64: toMicros(*sub.CurrentPeriodEnd), Valid: true}
	}

	query := `
		INSERT INTO subscriptions (user_id, tier, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET tier = excluded.tier, current_period_end = excluded.current_period_end, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, sub.UserID, sub.Tier, periodEnd, toMicros(sub.UpdatedAt)); err != nil {
		return errors.DatabaseError("Failed to upsert subscription", err)
	}
	return nil
}

// ExpireLapsed downgrades premium rows whose current_period_end has passed
func (r *SubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	defer observe("update", "subscriptions", time.Now())
	query := `
		UPDATE subscriptions SET tier = $1, updated_at = $2
		WHERE tier = $3 AND current_period_end IS NOT NULL AND current_period_end <= $4
	`

	ts := toMicros(now.UTC())
	res, err := r.db.ExecContext(ctx, query, subscription.TierFree, ts, subscription.TierPremium, ts)
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire subscriptions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to expire subscriptions", err)
	}
	return n, nil
}
