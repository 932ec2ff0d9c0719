package domain

import (
	"strings"
	"time"
)

// User is a registered identity. Email is the natural key.
type User struct {
	ID        *int64     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	IsActive  bool       `json:"is_active"`

	// PasswordHash is a bcrypt hash kept only on the device for offline login.
	PasswordHash string `json:"password_hash,omitempty"`
}

// SameEmail compares emails case-insensitively.
func (u User) SameEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(u.Email), strings.TrimSpace(email))
}

// MaskedPhone hides all but the last four digits.
func (u User) MaskedPhone() string {
	if len(u.Phone) >= 4 {
		return "***" + u.Phone[len(u.Phone)-4:]
	}
	return u.Phone
}

// Public returns a copy without local credential material.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
