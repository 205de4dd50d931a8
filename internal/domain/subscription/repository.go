package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// GetByUserID returns the user's subscription, or nil when none exists
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)

	// Upsert creates or replaces a subscription
	Upsert(ctx context.Context, sub *Subscription) error

	// ExpireLapsed moves premium subscriptions whose period ended at or
	// before now to the free tier and returns how many changed
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
