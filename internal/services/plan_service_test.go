package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/testutil"
	"github.com/welth-app/welth/internal/tracking"
)

func newPlanFixture() (*PlanService, *testutil.MockPlanRepository, *testutil.MockSubscriptionRepository) {
	plans := testutil.NewMockPlanRepository()
	subs := testutil.NewMockSubscriptionRepository()
	log := logger.Nop()
	return NewPlanService(plans, NewAccountService(subs, plans, log), log), plans, subs
}

func seedPlans(plans *testutil.MockPlanRepository, userID string, wellbeing ...float64) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, w := range wellbeing {
		plans.Create(context.Background(), &plan.Plan{
			ID:         fmt.Sprintf("%s-p%d", userID, i+1),
			UserID:     userID,
			CreatedAt:  base.AddDate(0, 0, i),
			Summary:    fmt.Sprintf("plan %d", i+1),
			Assessment: plan.Assessment{WellbeingScore: w},
		})
	}
}

func TestPlanService_Latest(t *testing.T) {
	s, plans, _ := newPlanFixture()
	ctx := context.Background()

	_, err := s.Latest(ctx, "u-1")
	assert.Equal(t, errors.ErrCodeNotFound, errors.Code(err))

	seedPlans(plans, "u-1", 4, 6)
	seedPlans(plans, "u-2", 9)

	p, err := s.Latest(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1-p2", p.ID)

	plans.ReadError = fmt.Errorf("boom")
	_, err = s.Latest(ctx, "u-1")
	assert.Equal(t, errors.ErrCodeDatabase, errors.Code(err))
}

func TestPlanService_ListRequiresPremium(t *testing.T) {
	s, plans, subs := newPlanFixture()
	ctx := context.Background()
	seedPlans(plans, "u-1", 4, 6, 8)

	_, err := s.List(ctx, "u-1")
	assert.Equal(t, errors.ErrCodePremiumRequired, errors.Code(err))
	assert.Equal(t, MsgHistoryPremium, errors.As(err).Message)

	subs.SetPremium("u-1")
	list, err := s.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "u-1-p3", list[0].ID, "newest first")

	empty, err := s.List(ctx, "u-3")
	assert.Equal(t, errors.ErrCodePremiumRequired, errors.Code(err))
	assert.Nil(t, empty)
}

func TestPlanService_Progress(t *testing.T) {
	s, plans, subs := newPlanFixture()
	ctx := context.Background()
	seedPlans(plans, "u-1", 4, 6, 8)
	subs.SetPremium("u-1")

	progress, err := s.Progress(ctx, "u-1", "")
	require.NoError(t, err)
	assert.Equal(t, "u-1-p3", progress.SelectedPlanID)
	assert.Equal(t, tracking.ComparisonPrior, progress.Comparison)
	require.NotNil(t, progress.Delta)
	assert.InDelta(t, 3.0, progress.Delta.Wellbeing, 1e-9)

	progress, err = s.Progress(ctx, "u-1", "u-1-p1")
	require.NoError(t, err)
	assert.Equal(t, tracking.ComparisonHistorical, progress.Comparison)

	_, err = s.Progress(ctx, "u-1", "u-2-p1")
	assert.Equal(t, errors.ErrCodeNotFound, errors.Code(err))
}

func TestPlanService_ProgressSelection(t *testing.T) {
	s, plans, subs := newPlanFixture()
	ctx := context.Background()
	seedPlans(plans, "u-1", 4, 6, 8)
	seedPlans(plans, "u-2", 5)
	subs.SetPremium("u-1")
	subs.SetPremium("u-4")

	tests := []struct {
		name     string
		userID   string
		planID   string
		wantID   string
		wantCode string
	}{
		{name: "empty selects newest", userID: "u-1", planID: "", wantID: "u-1-p3"},
		{name: "own older plan", userID: "u-1", planID: "u-1-p2", wantID: "u-1-p2"},
		{name: "another user's plan", userID: "u-1", planID: "u-2-p1", wantCode: errors.ErrCodeNotFound},
		{name: "unknown id", userID: "u-1", planID: "nope", wantCode: errors.ErrCodeNotFound},
		{name: "no plans and empty id", userID: "u-4", planID: ""},
		{name: "no plans and some id", userID: "u-4", planID: "u-1-p1", wantCode: errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress, err := s.Progress(ctx, tt.userID, tt.planID)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, progress.SelectedPlanID)
		})
	}
}
