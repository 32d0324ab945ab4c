package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wishlist/internal/access"
	"wishlist/internal/auth"
	"wishlist/internal/config"
	"wishlist/internal/db"
	"wishlist/internal/jobs"
	"wishlist/internal/metrics"
	"wishlist/internal/notify"
	"wishlist/internal/realtime"
	"wishlist/internal/server"
	"wishlist/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fatal("Invalid configuration", err)
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		fatal("Failed to load config file", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		fatal("Failed to run migrations", err)
	}
	slog.Info("migrations completed successfully")

	// Access tokens: the shared secret always, OIDC when configured
	verifiers := []auth.Verifier{auth.NewJWTVerifier(cfg.JWTSecret)}
	if cfg.OIDCEnabled() {
		oidcVerifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			slog.Warn("OIDC token verification disabled", "error", err)
		} else {
			verifiers = append(verifiers, oidcVerifier)
		}
	} else {
		slog.Info("OIDC token verification is disabled. Set OIDC_ISSUER and OIDC_CLIENT_ID to enable.")
	}
	authenticator := auth.NewAuthenticator(database, verifiers...)

	// Realtime
	hub := realtime.NewHub(logger)
	metrics.Init(hub)
	connLimiter := realtime.NewConnLimiter(yamlCfg.Realtime.ConnectWindow, yamlCfg.Realtime.ConnectMax)
	gateway := realtime.NewGateway(hub, authenticator, access.NewResolver(database), connLimiter, realtime.Config{
		PingInterval:     yamlCfg.Realtime.PingInterval,
		HandshakeTimeout: yamlCfg.Realtime.HandshakeTimeout,
	}, logger)

	svc := service.New(service.PGStore{DB: database}, notify.NewFanout(hub, logger), service.Options{
		PublicLinkTokenLength: cfg.PublicLinkTokenLength,
		Logger:                logger,
	})

	srv := server.New(cfg)
	srv.RegisterRoutes(ctx, server.Deps{
		Service: svc,
		Auth:    authenticator,
		Gateway: gateway,
		DB:      database,
		Rooms:   hub,
	})

	// Start background jobs
	sweeper := jobs.NewSweeper(database, connLimiter, yamlCfg.Jobs.SweepInterval, yamlCfg.Jobs.ExpiredGrace, logger)
	go sweeper.Start(ctx)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.ServerAddr, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	// Realtime sessions and the sweeper stop with ctx.
	cancel()
	if err := srv.Shutdown(); err != nil {
		fatal("Server forced to shutdown", err)
	}
	slog.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
