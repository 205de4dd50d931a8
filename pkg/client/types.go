package client

// User represents an account
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

// Entitlement is the tier and usage summary of the caller
type Entitlement struct {
	IsPremium       bool   `json:"isPremium"`
	Tier            string `json:"tier"`
	EvaluationCount int    `json:"evaluationCount"`
	FreeLimit       int    `json:"freeLimit"`
	FreeRemaining   int    `json:"freeRemaining"`
}

// MessagePart is one part of a chat message
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Message is a chat message in the UI shape
type Message struct {
	ID    string        `json:"id,omitempty"`
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// Text joins the text parts of m
func (m Message) Text() string {
	var s string
	for _, p := range m.Parts {
		if p.Type == "text" {
			s += p.Text
		}
	}
	return s
}

// UserMessage builds a single-part user message
func UserMessage(text string) Message {
	return Message{Role: "user", Parts: []MessagePart{{Type: "text", Text: text}}}
}

// Assessment holds the scores of one evaluation
type Assessment struct {
	WellbeingScore           float64 `json:"wellbeingScore" yaml:"wellbeingScore"`
	StressLevel              float64 `json:"stressLevel" yaml:"stressLevel"`
	SleepRepairScore         float64 `json:"sleepRepairScore" yaml:"sleepRepairScore"`
	ExerciseFrequencyPerWeek float64 `json:"exerciseFrequencyPerWeek" yaml:"exerciseFrequencyPerWeek"`
}

// Habit is one recommended habit
type Habit struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Category    string  `json:"category" yaml:"category"`
	Frequency   string  `json:"frequency" yaml:"frequency"`
	TimeOfDay   *string `json:"timeOfDay,omitempty" yaml:"timeOfDay,omitempty"`
	Priority    string  `json:"priority" yaml:"priority"`
	Reasoning   string  `json:"reasoning" yaml:"reasoning"`
}

// Plan is a habit plan. CreatedAt is kept as sent (RFC3339).
type Plan struct {
	ID         string     `json:"id" yaml:"id"`
	CreatedAt  string     `json:"createdAt" yaml:"createdAt"`
	Summary    string     `json:"summary" yaml:"summary"`
	Assessment Assessment `json:"assessment" yaml:"assessment"`
	Habits     []Habit    `json:"habits" yaml:"habits"`
}

// HealthResponse is returned by the liveness and readiness probes
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
