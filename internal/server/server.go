package server

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/storage/redis/v3"

	"wishlist/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	storage *redis.Storage
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			} else {
				slog.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
			}

			return c.Status(code).JSON(fiber.Map{
				"status": "error",
				"error":  message,
			})
		},
	})

	s := &Server{App: app, Cfg: cfg}

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// CORS middleware
	corsOrigins := cfg.BaseURL
	if cfg.CORSOrigins != "" {
		corsOrigins = cfg.CORSOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(corsOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Rate limiting middleware, shared across instances when redis is configured.
	limiterCfg := limiter.Config{
		Max:        cfg.HTTPRateLimit,
		Expiration: 1 * time.Minute,
		Next: func(c fiber.Ctx) bool {
			// /ws has its own connection limiter
			switch c.Path() {
			case "/ws", "/metrics", "/healthz":
				return true
			}
			return false
		},
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Rate limit exceeded. Please try again later.",
			})
		},
	}
	if cfg.RedisURL != "" {
		s.storage = redis.New(redis.Config{URL: cfg.RedisURL})
		limiterCfg.Storage = s.storage
		slog.Info("http rate limiter using redis storage")
	}
	app.Use(limiter.New(limiterCfg))

	return s
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.Cfg.ServerAddr)
	return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{DisableStartupMessage: !s.Cfg.IsDev()})
}

// Shutdown gracefully shuts down the server and releases the limiter storage.
func (s *Server) Shutdown() error {
	err := s.App.Shutdown()
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
