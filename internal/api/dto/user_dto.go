package dto

import (
	"time"

	"github.com/spec-kit/raksha/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	MaskedPhone string     `json:"masked_phone"`
	Role        string     `json:"role,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		MaskedPhone: u.MaskedPhone(),
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
	}
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

// SessionResponse describes the logged-in state.
type SessionResponse struct {
	User     UserResponse `json:"user"`
	Verified bool         `json:"verified"`
}
