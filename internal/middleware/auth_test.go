package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
)

type stubAuth struct {
	user *models.User
	err  error
}

func (s stubAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	if token != "good" {
		if s.err != nil {
			return nil, s.err
		}
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return s.user, nil
}

func newTestApp(auth Authenticator, optional bool) *fiber.App {
	m := NewAuthMiddleware(auth)
	handler := m.RequireAuth
	if optional {
		handler = m.OptionalAuth
	}

	app := fiber.New()
	app.Get("/", handler, func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(user.ID.String())
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	user := &models.User{ID: uuid.New()}

	tests := []struct {
		name       string
		header     string
		err        error
		wantStatus int
	}{
		{"valid token", "Bearer good", nil, fiber.StatusOK},
		{"lowercase scheme", "bearer good", nil, fiber.StatusOK},
		{"missing header", "", nil, fiber.StatusUnauthorized},
		{"wrong scheme", "Basic good", nil, fiber.StatusUnauthorized},
		{"invalid token", "Bearer bad", nil, fiber.StatusUnauthorized},
		{"store failure", "Bearer bad", errors.New("connection refused"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(stubAuth{user: user, err: tt.err}, false)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	user := &models.User{ID: uuid.New()}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer good", user.ID.String()},
		{"no token", "", "anonymous"},
		{"invalid token", "Bearer bad", "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(stubAuth{user: user}, true)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			if got := string(body); got != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}
