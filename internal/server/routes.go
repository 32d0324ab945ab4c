package server

import (
	"context"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wishlist/internal/handlers"
	"wishlist/internal/handlers/api"
	"wishlist/internal/middleware"
	"wishlist/internal/realtime"
)

// Service is the full service surface the API dispatches to.
type Service interface {
	api.ItemService
	api.WishlistService
	api.PublicService
	api.NotificationService
}

// Deps are the components routes dispatch to.
type Deps struct {
	Service Service
	Auth    middleware.Authenticator
	Gateway *realtime.Gateway
	DB      api.Pinger
	Rooms   api.RoomCounter
}

// RegisterRoutes registers all application routes. ctx bounds the lifetime of
// realtime sessions.
func (s *Server) RegisterRoutes(ctx context.Context, d Deps) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(d.Auth)
	requireAuth := authMiddleware.RequireAuth

	// Initialize handlers
	itemHandler := api.NewItemHandler(d.Service)
	wishlistHandler := api.NewWishlistHandler(d.Service, s.Cfg.BaseURL)
	publicHandler := api.NewPublicHandler(d.Service)
	notificationHandler := api.NewNotificationHandler(d.Service)
	healthHandler := api.NewHealthHandler(d.DB, d.Rooms)
	wsHandler := handlers.NewWSHandler(ctx, d.Gateway)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Realtime
	s.App.Get("/ws", wsHandler.Upgrade, wsHandler.Serve())

	v1 := s.App.Group("/api/v1")

	// Member routes
	lists := v1.Group("/wishlists/:id")
	lists.Delete("", requireAuth, wishlistHandler.Delete)
	lists.Get("/delete-impact", requireAuth, wishlistHandler.DeleteImpact)

	lists.Get("/items", requireAuth, itemHandler.List)
	lists.Post("/items", requireAuth, itemHandler.Create)
	lists.Get("/items/:itemID", requireAuth, itemHandler.Get)
	lists.Patch("/items/:itemID", requireAuth, itemHandler.Reserve)
	lists.Delete("/items/:itemID", requireAuth, itemHandler.Delete)
	lists.Get("/items/:itemID/contributions", requireAuth, itemHandler.Contributions)
	lists.Post("/items/:itemID/contributions", requireAuth, itemHandler.Contribute)

	lists.Post("/public-link", requireAuth, wishlistHandler.SharePublicly)
	lists.Get("/public-link", requireAuth, wishlistHandler.PublicLink)
	lists.Delete("/public-link", requireAuth, wishlistHandler.RevokePublicLink)

	lists.Get("/suggestions", requireAuth, wishlistHandler.Suggestions)
	lists.Post("/suggestions/:suggestionID/accept", requireAuth, wishlistHandler.AcceptSuggestion)
	lists.Post("/suggestions/:suggestionID/reject", requireAuth, wishlistHandler.RejectSuggestion)

	// Public link routes - the token travels in the query string
	v1.Get("/public/wishlists", publicHandler.View)
	v1.Patch("/public/wishlists/items/:itemID", requireAuth, publicHandler.Reserve)
	v1.Post("/public/wishlists/items/:itemID/contributions", requireAuth, publicHandler.Contribute)
	v1.Post("/public/wishlists/suggestions", authMiddleware.OptionalAuth, publicHandler.Suggest)

	// Notifications
	notifications := v1.Group("/notifications")
	notifications.Get("", requireAuth, notificationHandler.List)
	notifications.Patch("/:id/read", requireAuth, notificationHandler.MarkRead)
	notifications.Post("/read-all", requireAuth, notificationHandler.MarkAllRead)
}
