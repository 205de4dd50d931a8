package plan

import "time"

// Priority of a habit
type Priority string

// Priorities
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Assessment holds the scores produced by an evaluation. Wellbeing, stress
// and sleep are on a 0..10 scale; exercise is sessions per week.
type Assessment struct {
	WellbeingScore           float64 `json:"wellbeingScore"`
	StressLevel              float64 `json:"stressLevel"`
	SleepRepairScore         float64 `json:"sleepRepairScore"`
	ExerciseFrequencyPerWeek float64 `json:"exerciseFrequencyPerWeek"`
}

// Habit is a recommendation owned by a plan
type Habit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Frequency   string   `json:"frequency"`
	TimeOfDay   *string  `json:"timeOfDay,omitempty"`
	Priority    Priority `json:"priority"`
	Reasoning   string   `json:"reasoning"`
}

// Plan is the stored output of an evaluation. Plans are created by the
// evaluation process and are read-only for this service.
type Plan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	CreatedAt  time.Time  `json:"createdAt"`
	Summary    string     `json:"summary"`
	Assessment Assessment `json:"assessment"`
	Habits     []Habit    `json:"habits"`
}

// HighPriorityCount returns the number of high priority habits
func (p *Plan) HighPriorityCount() int {
	n := 0
	for _, h := range p.Habits {
		if h.Priority == PriorityHigh {
			n++
		}
	}
	return n
}
