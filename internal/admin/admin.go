// Package admin holds operator tasks that write the records this service
// otherwise only reads: subscriptions and habit plans.
package admin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/identity"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/validator"
)

// Service performs operator tasks
type Service struct {
	users     user.Repository
	subs      subscription.Repository
	plans     plan.Repository
	validator *validator.Validator
	logger    *logger.Logger
}

// NewService creates an admin service
func NewService(users user.Repository, subs subscription.Repository, plans plan.Repository, log *logger.Logger) *Service {
	return &Service{
		users:     users,
		subs:      subs,
		plans:     plans,
		validator: validator.New(),
		logger:    log,
	}
}

// ResolveUser finds a user by ID, falling back to the login handle of ref
func (s *Service) ResolveUser(ctx context.Context, ref string) (*user.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.BadRequest("user reference is empty")
	}

	u, err := s.users.GetByID(ctx, ref)
	if err == nil {
		return u, nil
	}
	if errors.Code(err) != errors.ErrCodeNotFound {
		return nil, err
	}

	email := identity.SyntheticEmail(ref)
	if email == "" {
		return nil, errors.NotFound("User")
	}
	return s.users.GetByEmail(ctx, email)
}

// GrantPremium sets the user's tier to premium. A nil until means no end.
func (s *Service) GrantPremium(ctx context.Context, ref string, until *time.Time) (*subscription.Subscription, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		UserID:           u.ID,
		Tier:             subscription.TierPremium,
		CurrentPeriodEnd: until,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("Granted premium")
	return sub, nil
}

// RevokePremium returns the user to the free tier
func (s *Service) RevokePremium(ctx context.Context, ref string) (*subscription.Subscription, error) {
	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		UserID:    u.ID,
		Tier:      subscription.TierFree,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.With("user_id", u.ID).Info("Revoked premium")
	return sub, nil
}

// PlanDocument is the file format accepted by ImportPlan. JSON documents
// decode as well since they are valid YAML.
type PlanDocument struct {
	CreatedAt  string           `yaml:"createdAt" json:"createdAt"`
	Summary    string           `yaml:"summary" json:"summary" validate:"required"`
	Assessment AssessmentRecord `yaml:"assessment" json:"assessment"`
	Habits     []HabitRecord    `yaml:"habits" json:"habits" validate:"dive"`
}

// AssessmentRecord is the assessment block of a PlanDocument
type AssessmentRecord struct {
	WellbeingScore           float64 `yaml:"wellbeingScore" json:"wellbeingScore" validate:"gte=0,lte=10"`
	StressLevel              float64 `yaml:"stressLevel" json:"stressLevel" validate:"gte=0,lte=10"`
	SleepRepairScore         float64 `yaml:"sleepRepairScore" json:"sleepRepairScore" validate:"gte=0,lte=10"`
	ExerciseFrequencyPerWeek float64 `yaml:"exerciseFrequencyPerWeek" json:"exerciseFrequencyPerWeek" validate:"gte=0"`
}

// HabitRecord is one habit of a PlanDocument
type HabitRecord struct {
	Title       string  `yaml:"title" json:"title" validate:"required"`
	Description string  `yaml:"description" json:"description"`
	Category    string  `yaml:"category" json:"category"`
	Frequency   string  `yaml:"frequency" json:"frequency"`
	TimeOfDay   *string `yaml:"timeOfDay" json:"timeOfDay"`
	Priority    string  `yaml:"priority" json:"priority" validate:"oneof=high medium low"`
	Reasoning   string  `yaml:"reasoning" json:"reasoning"`
}

// DecodePlanDocument reads a JSON or YAML plan document
func DecodePlanDocument(r io.Reader) (*PlanDocument, error) {
	var doc PlanDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.BadRequest("plan document is empty")
		}
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "plan document is malformed", http.StatusBadRequest)
	}
	return &doc, nil
}

// ImportPlan stores doc as a new plan owned by the referenced user
func (s *Service) ImportPlan(ctx context.Context, ref string, doc *PlanDocument) (*plan.Plan, error) {
	if errs := s.validator.Validate(doc); len(errs) > 0 {
		return nil, errors.ValidationError("Invalid plan document", errs)
	}

	u, err := s.ResolveUser(ctx, ref)
	if err != nil {
		return nil, err
	}

	p := &plan.Plan{
		UserID:  u.ID,
		Summary: doc.Summary,
		Assessment: plan.Assessment{
			WellbeingScore:           doc.Assessment.WellbeingScore,
			StressLevel:              doc.Assessment.StressLevel,
			SleepRepairScore:         doc.Assessment.SleepRepairScore,
			ExerciseFrequencyPerWeek: doc.Assessment.ExerciseFrequencyPerWeek,
		},
	}
	if doc.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, doc.CreatedAt)
		if err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("createdAt %q is not an RFC3339 timestamp", doc.CreatedAt))
		}
		p.CreatedAt = t.UTC()
	}
	for _, h := range doc.Habits {
		p.Habits = append(p.Habits, plan.Habit{
			Title:       h.Title,
			Description: h.Description,
			Category:    h.Category,
			Frequency:   h.Frequency,
			TimeOfDay:   h.TimeOfDay,
			Priority:    plan.Priority(h.Priority),
			Reasoning:   h.Reasoning,
		})
	}

	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"plan_id": p.ID,
		"habits":  len(p.Habits),
	}).Info("Imported plan")
	return p, nil
}
