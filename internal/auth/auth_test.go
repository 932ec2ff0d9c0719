package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/raksha/internal/domain"
)

func signed(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "u-1"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenUsable(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, TokenUsable(signed(t, &future), now))
	assert.False(t, TokenUsable(signed(t, &past), now))
	assert.True(t, TokenUsable(signed(t, nil), now))
	assert.True(t, TokenUsable("opaque-session-token", now))
	assert.False(t, TokenUsable("", now))

	exp, ok := TokenExpiry(signed(t, &future))
	require.True(t, ok)
	assert.True(t, exp.Equal(future))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.True(t, PasswordMatches(hash, "secret1"))
	assert.False(t, PasswordMatches(hash, "secret2"))
	assert.False(t, PasswordMatches("", "secret1"))
}

type staticSessions struct{ user *domain.User }

func (s staticSessions) CurrentUser() *domain.User { return s.user }

func TestRequireSession(t *testing.T) {
	newApp := func(user *domain.User) *fiber.App {
		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.SendStatus(http.StatusUnauthorized)
			},
		})
		app.Get("/me", RequireSession(staticSessions{user: user}), func(c *fiber.Ctx) error {
			u, ok := UserFromContext(c)
			require.True(t, ok)
			return c.SendString(u.UserID)
		})
		return app
	}

	resp, err := newApp(nil).Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = newApp(&domain.User{UserID: "u-1", IsActive: true}).Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
