package dto

import (
	"github.com/welth-app/welth/internal/domain/plan"
)

// PlansResponse is the body of GET /api/plans?all=1
type PlansResponse struct {
	Plans []*plan.Plan `json:"plans"`
}

// PlanResponse is the body of GET /api/plans
type PlanResponse struct {
	Plan *plan.Plan `json:"plan"`
}
