package subscription

import "time"

// Tier values
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Subscription is the billing state of a user. It is written by the billing
// process and only read here.
type Subscription struct {
	UserID           string     `json:"user_id"`
	Tier             string     `json:"tier"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
