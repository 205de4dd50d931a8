package client

import (
	"context"
)

// PlanService reads habit plans
type PlanService struct {
	client *Client
}

// Latest returns the newest plan
func (s *PlanService) Latest(ctx context.Context) (*Plan, error) {
	var resp struct {
		Plan *Plan `json:"plan"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/plans", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plan, nil
}

// List returns every plan, newest first. Premium only.
func (s *PlanService) List(ctx context.Context) ([]Plan, error) {
	var resp struct {
		Plans []Plan `json:"plans"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/plans?all=1", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}
