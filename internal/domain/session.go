package domain

import "time"

// Session is the persisted login record.
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Expired reports whether the session is older than ttl at now.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.Timestamp) > ttl
}
