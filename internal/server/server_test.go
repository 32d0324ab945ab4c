package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"wishlist/internal/apperr"
	"wishlist/internal/config"
	"wishlist/internal/models"
	"wishlist/internal/realtime"
)

type denyAll struct{}

func (denyAll) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return nil, apperr.Unauthorized("Not authenticated")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, rateLimit int, pingErr error) *Server {
	t.Helper()
	cfg := &config.Config{
		Env:           "development",
		BaseURL:       "http://localhost:3000",
		HTTPRateLimit: rateLimit,
	}
	s := New(cfg)
	hub := realtime.NewHub(slog.Default())
	gateway := realtime.NewGateway(hub, denyAll{}, nil, realtime.NewConnLimiter(0, 0), realtime.Config{}, slog.Default())
	s.RegisterRoutes(context.Background(), Deps{
		Auth:    denyAll{},
		Gateway: gateway,
		DB:      fakePinger{err: pingErr},
		Rooms:   hub,
	})
	return s
}

func body(t *testing.T, s *Server, method, path string) (int, string) {
	t.Helper()
	resp, err := s.App.Test(httptest.NewRequest(method, path, nil))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, 100, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"health", "GET", "/healthz", fiber.StatusOK, `"database":"ok"`},
		{"metrics", "GET", "/metrics", fiber.StatusOK, "go_goroutines"},
		{"ws without upgrade", "GET", "/ws", fiber.StatusUpgradeRequired, `"status":"error"`},
		{"items require auth", "GET", "/api/v1/wishlists/0b7e4f9e-4e0e-4b8a-9f3e-8a7c4f1d2e3a/items", fiber.StatusUnauthorized, "Not authenticated"},
		{"notifications require auth", "GET", "/api/v1/notifications", fiber.StatusUnauthorized, "Not authenticated"},
		{"unknown route", "GET", "/api/v1/nope", fiber.StatusNotFound, `"status":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := body(t, s, tt.method, tt.path)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", status, tt.wantStatus, got)
			}
			if !strings.Contains(got, tt.wantBody) {
				t.Errorf("body %q does not contain %q", got, tt.wantBody)
			}
		})
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	s := newTestServer(t, 100, errors.New("connection refused"))
	status, got := body(t, s, "GET", "/healthz")
	if status != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (body %s)", status, got)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 2, nil)
	path := "/api/v1/notifications"

	for i := 0; i < 2; i++ {
		if status, _ := body(t, s, "GET", path); status != fiber.StatusUnauthorized {
			t.Fatalf("request %d: status = %d", i+1, status)
		}
	}
	status, got := body(t, s, "GET", path)
	if status != fiber.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", status)
	}
	if !strings.Contains(got, "Rate limit exceeded") {
		t.Errorf("body = %q", got)
	}

	// health checks are never limited
	if status, _ := body(t, s, "GET", "/healthz"); status != fiber.StatusOK {
		t.Errorf("health status = %d", status)
	}
}
