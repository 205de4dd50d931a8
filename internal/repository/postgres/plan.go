package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// PlanRepository implements plan.Repository over habit_plans and habits
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *sql.DB) plan.Repository {
	return &PlanRepository{db: db}
}

const planColumns = `id, user_id, summary, wellbeing_score, stress_level, sleep_repair_score, exercise_frequency_per_week, created_at`

// Create stores a plan and its habits in one transaction
func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	defer observe("insert", "habit_plans", time.Now())
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO habit_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID, p.UserID, p.Summary,
		p.Assessment.WellbeingScore, p.Assessment.StressLevel,
		p.Assessment.SleepRepairScore, p.Assessment.ExerciseFrequencyPerWeek,
		toMicros(p.CreatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create habit plan", err)
	}

	for i := range p.Habits {
		h := &p.Habits[i]
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		var timeOfDay sql.NullString
		if h.TimeOfDay != nil {
			timeOfDay = sql.NullString{String: *h.TimeOfDay, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO habits (id, plan_id, position, title, description, category, frequency, time_of_day, priority, reasoning)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, h.ID, p.ID, i, h.Title, h.Description, h.Category, h.Frequency, timeOfDay, string(h.Priority), h.Reasoning)
		if err != nil {
			return errors.DatabaseError("Failed to create habit", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit habit plan", err)
	}
	return nil
}

// Latest returns the newest plan, or nil when the user has none
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*plan.Plan, error) {
	defer observe("select", "habit_plans", time.Now())
	plans, err := r.list(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return plans[0], nil
}

// LatestSummary reads only the summary column of the newest plan
func (r *PlanRepository) LatestSummary(ctx context.Context, userID string) (string, bool, error) {
	defer observe("select", "habit_plans", time.Now())
	var summary string
	err := r.db.QueryRowContext(ctx, `
		SELECT summary FROM habit_plans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.DatabaseError("Failed to get latest plan summary", err)
	}
	return summary, true, nil
}

// ListByUser returns every plan of the user, newest first
func (r *PlanRepository) ListByUser(ctx context.Context, userID string) ([]*plan.Plan, error) {
	defer observe("select", "habit_plans", time.Now())
	return r.list(ctx, userID, -1)
}

// CountByUser counts the user's plans
func (r *PlanRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	defer observe("count", "habit_plans", time.Now())
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habit_plans WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count habit plans", err)
	}
	return count, nil
}

// list loads plans newest first; limit < 0 means no limit
func (r *PlanRepository) list(ctx context.Context, userID string, limit int) ([]*plan.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM habit_plans WHERE user_id = $1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit >= 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list habit plans", err)
	}
	defer rows.Close()

	var plans []*plan.Plan
	byID := make(map[string]*plan.Plan)
	for rows.Next() {
		var p plan.Plan
		var createdAt int64
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Summary,
			&p.Assessment.WellbeingScore, &p.Assessment.StressLevel,
			&p.Assessment.SleepRepairScore, &p.Assessment.ExerciseFrequencyPerWeek,
			&createdAt,
		)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan habit plan", err)
		}
		p.CreatedAt = fromMicros(createdAt)
		p.Habits = []plan.Habit{}
		plans = append(plans, &p)
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate habit plans", err)
	}
	rows.Close()

	if len(plans) == 0 {
		return plans, nil
	}
	if err := r.attachHabits(ctx, userID, byID); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) attachHabits(ctx context.Context, userID string, byID map[string]*plan.Plan) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.id, h.plan_id, h.title, h.description, h.category, h.frequency, h.time_of_day, h.priority, h.reasoning
		FROM habits h
		JOIN habit_plans p ON p.id = h.plan_id
		WHERE p.user_id = $1
		ORDER BY h.plan_id, h.position
	`, userID)
	if err != nil {
		return errors.DatabaseError("Failed to list habits", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h plan.Habit
		var planID, priority string
		var timeOfDay sql.NullString
		err := rows.Scan(&h.ID, &planID, &h.Title, &h.Description, &h.Category, &h.Frequency, &timeOfDay, &priority, &h.Reasoning)
		if err != nil {
			return errors.DatabaseError("Failed to scan habit", err)
		}
		p, ok := byID[planID]
		if !ok {
			continue
		}
		if timeOfDay.Valid {
			tod := timeOfDay.String
			h.TimeOfDay = &tod
		}
		h.Priority = plan.Priority(priority)
		p.Habits = append(p.Habits, h)
	}
	if err := rows.Err(); err != nil {
		return errors.DatabaseError("Failed to iterate habits", err)
	}
	return nil
}
