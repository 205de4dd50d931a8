package plan

import "context"

// Repository defines the interface for habit plan data access
type Repository interface {
	// Create stores a plan and its habits
	Create(ctx context.Context, p *Plan) error

	// Latest returns the newest plan of the user, or nil when there is none
	Latest(ctx context.Context, userID string) (*Plan, error)

	// LatestSummary returns the summary of the newest plan; ok is false when
	// the user has no plans
	LatestSummary(ctx context.Context, userID string) (summary string, ok bool, err error)

	// ListByUser returns every plan of the user, newest first
	ListByUser(ctx context.Context, userID string) ([]*Plan, error)

	// CountByUser returns the number of plans owned by the user
	CountByUser(ctx context.Context, userID string) (int, error)
}
