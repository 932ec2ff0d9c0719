package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a backend-issued JWT. The signature is
// not checked: the backend holds the key and re-validates on every call.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenUsable reports whether a stored token is worth sending. Opaque
// tokens and JWTs without exp are assumed usable.
func TokenUsable(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	exp, ok := TokenExpiry(token)
	if !ok {
		return true
	}
	return now.Before(exp)
}
