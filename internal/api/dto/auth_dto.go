package dto

import (
	"time"

	"github.com/spec-kit/erms/internal/domain"
)

// RegisterRequest payload for new accounts. The engineer profile fields only apply to role engineer.
type RegisterRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Role        string   `json:"role" validate:"omitempty,oneof=engineer manager"`
	Department  string   `json:"department" validate:"max=120"`
	Skills      []string `json:"skills" validate:"max=50,dive,max=60"`
	Seniority   string   `json:"seniority" validate:"omitempty,oneof=junior mid senior"`
	MaxCapacity int      `json:"maxCapacity" validate:"omitempty,oneof=25 50 75 100"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User     UserResponse      `json:"user"`
	Engineer *EngineerResponse `json:"engineer,omitempty"`
	Auth     AuthResponse      `json:"auth"`
}

// ProfileResponse is returned by the profile endpoint.
type ProfileResponse struct {
	User     UserResponse      `json:"user"`
	Engineer *EngineerResponse `json:"engineer,omitempty"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}
