package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware handles user authentication via bearer tokens.
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth ensures the request carries a valid access token.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, err := m.auth.Authenticate(c.Context(), BearerToken(c))
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error",
				"error":  err.Error(),
			})
		}
		slog.Error("authentication failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
			"error":  "internal server error",
		})
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if a valid token is present, but doesn't require one.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	token := BearerToken(c)
	if token == "" {
		return c.Next()
	}

	user, err := m.auth.Authenticate(c.Context(), token)
	if err == nil {
		c.Locals("user", user)
	}

	return c.Next()
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
