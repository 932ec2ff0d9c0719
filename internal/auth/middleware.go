package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/raksha/internal/domain"
	apperrors "github.com/spec-kit/raksha/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// SessionSource yields the logged-in user, or nil.
type SessionSource interface {
	CurrentUser() *domain.User
}

// RequireSession rejects requests when nobody is logged in and stores the
// current user for handlers.
func RequireSession(sessions SessionSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := sessions.CurrentUser()
		if user == nil {
			return apperrors.NewUnauthorized("login required")
		}
		if !user.IsActive {
			return apperrors.NewUnauthorized("account disabled")
		}
		c.Locals(principalKey, user)
		return c.Next()
	}
}

// UserFromContext retrieves the user stored by RequireSession.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
