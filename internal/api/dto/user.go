package dto

import (
	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/entitlement"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserDTO converts a domain user
func NewUserDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// MeResponse is the entitlement summary of the caller
type MeResponse = entitlement.Status
