package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/testutil"
)

func TestSubscriptionSweeper_Sweep(t *testing.T) {
	subs := testutil.NewMockSubscriptionRepository()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lapsed := now.Add(-time.Minute)
	ctx := context.Background()

	subs.Upsert(ctx, &subscription.Subscription{UserID: "u-1", Tier: subscription.TierPremium, CurrentPeriodEnd: &lapsed})
	subs.SetPremium("u-2")

	s := NewSubscriptionSweeper(subs, "@hourly", logger.Nop())
	s.now = func() time.Time { return now }

	assert.Equal(t, int64(1), s.Sweep(ctx))
	assert.Equal(t, subscription.TierFree, subs.Subs["u-1"].Tier)
	assert.Equal(t, subscription.TierPremium, subs.Subs["u-2"].Tier)

	subs.ExpireError = fmt.Errorf("database is locked")
	assert.Zero(t, s.Sweep(ctx))
}

func TestSubscriptionSweeper_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	subs := testutil.NewMockSubscriptionRepository()
	lapsed := time.Now().Add(-time.Hour)
	subs.Upsert(context.Background(), &subscription.Subscription{UserID: "u-1", Tier: subscription.TierPremium, CurrentPeriodEnd: &lapsed})

	s := NewSubscriptionSweeper(subs, "@every 1h", logger.Nop())
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "second start")

	assert.Equal(t, subscription.TierFree, subs.Subs["u-1"].Tier, "first sweep runs on start")

	s.Stop()
	s.Stop()
}

func TestSubscriptionSweeper_InvalidSchedule(t *testing.T) {
	s := NewSubscriptionSweeper(testutil.NewMockSubscriptionRepository(), "every tuesday", logger.Nop())

	assert.Error(t, s.Start(context.Background()))
}
