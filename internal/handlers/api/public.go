package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
	"wishlist/internal/service"
)

// PublicService is the public-link surface of the service layer.
type PublicService interface {
	ViewPublic(ctx context.Context, token string) (*service.PublicView, error)
	ReservePublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in service.ReserveInput) (*models.ItemView, error)
	AddContributionPublic(ctx context.Context, userID uuid.UUID, token string, itemID uuid.UUID, in service.ContributionInput) (*models.ItemView, error)
	Suggest(ctx context.Context, caller *uuid.UUID, token string, in service.NewSuggestion) (*models.Suggestion, error)
}

// PublicHandler serves visitors holding a public link token.
type PublicHandler struct {
	svc PublicService
}

// NewPublicHandler creates a new API public handler.
func NewPublicHandler(svc PublicService) *PublicHandler {
	return &PublicHandler{svc: svc}
}

type suggestionRequest struct {
	Title   string  `json:"title" validate:"required,max=500"`
	LinkURL *string `json:"link_url" validate:"omitempty,httpurl"`
	Message *string `json:"message" validate:"omitempty,max=1000"`
}

// View returns the list behind a token and counts one view.
func (h *PublicHandler) View(c fiber.Ctx) error {
	view, err := h.svc.ViewPublic(c.Context(), c.Query("token"))
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, view)
}

func publicItemRoute(c fiber.Ctx) (*models.User, uuid.UUID, error) {
	user, ok := currentUser(c)
	if !ok {
		return nil, uuid.Nil, apperr.Unauthorized("Not authenticated")
	}
	itemID, ok := paramID(c, "itemID")
	if !ok {
		return nil, uuid.Nil, apperr.NotFound("Item not found")
	}
	return user, itemID, nil
}

// Reserve changes an item's reservation status through a public link.
func (h *PublicHandler) Reserve(c fiber.Ctx) error {
	user, itemID, err := publicItemRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req reserveRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.ReservePublic(c.Context(), user.ID, c.Query("token"), itemID, service.ReserveInput{
		Status:  req.Status,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, item)
}

// Contribute records a money contribution through a public link.
func (h *PublicHandler) Contribute(c fiber.Ctx) error {
	user, itemID, err := publicItemRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req contributionRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.AddContributionPublic(c.Context(), user.ID, c.Query("token"), itemID, service.ContributionInput{
		Amount: req.Amount,
		Status: req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, item)
}

// Suggest proposes an item. Signing in is optional.
func (h *PublicHandler) Suggest(c fiber.Ctx) error {
	var req suggestionRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var caller *uuid.UUID
	if user, ok := currentUser(c); ok {
		caller = &user.ID
	}

	suggestion, err := h.svc.Suggest(c.Context(), caller, c.Query("token"), service.NewSuggestion{
		Title:   req.Title,
		LinkURL: req.LinkURL,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, suggestion)
}
