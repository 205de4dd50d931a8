package chat

import "time"

// Role identifies the author of a turn
type Role string

// Roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one persisted message of a conversation. Turns are append-only.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ParseRole maps stored role strings onto Role, defaulting to assistant
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleUser, RoleSystem:
		return Role(s)
	}
	return RoleAssistant
}
