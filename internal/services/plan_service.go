package services

import (
	"context"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/tracking"
)

// MsgHistoryPremium is returned when a free user asks for the plan history
const MsgHistoryPremium = "Premium requerido para ver el historial."

// PlanService serves the habit plans produced by evaluations
type PlanService struct {
	repo     plan.Repository
	accounts *AccountService
	logger   *logger.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(repo plan.Repository, accounts *AccountService, log *logger.Logger) *PlanService {
	return &PlanService{repo: repo, accounts: accounts, logger: log}
}

// Latest returns the newest plan of the user
func (s *PlanService) Latest(ctx context.Context, userID string) (*plan.Plan, error) {
	p, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load plan", err)
	}
	if p == nil {
		return nil, errors.NotFound("Plan")
	}
	return p, nil
}

// List returns every plan of a premium user, newest first
func (s *PlanService) List(ctx context.Context, userID string) ([]*plan.Plan, error) {
	if !s.accounts.IsPremium(ctx, userID) {
		return nil, errors.PremiumRequired(MsgHistoryPremium)
	}

	plans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load plans", err)
	}
	if plans == nil {
		plans = []*plan.Plan{}
	}
	return plans, nil
}

// Progress derives the tracking view of a premium user. An empty planID
// selects the newest plan; an id outside the user's plans is NotFound.
func (s *PlanService) Progress(ctx context.Context, userID, planID string) (tracking.Progress, error) {
	plans, err := s.List(ctx, userID)
	if err != nil {
		return tracking.Progress{}, err
	}

	if planID != "" && !containsPlan(plans, planID) {
		return tracking.Progress{}, errors.NotFound("Plan")
	}

	return tracking.Derive(plans, planID), nil
}

func containsPlan(plans []*plan.Plan, id string) bool {
	for _, p := range plans {
		if p.ID == id {
			return true
		}
	}
	return false
}
