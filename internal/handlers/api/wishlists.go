package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
	"wishlist/internal/service"
)

// WishlistService is the owner-only surface of the service layer.
type WishlistService interface {
	DeleteList(ctx context.Context, userID, listID uuid.UUID) error
	DeleteImpact(ctx context.Context, userID, listID uuid.UUID) (*models.DeleteImpact, error)
	SharePublicly(ctx context.Context, userID, listID uuid.UUID, in service.PublicLinkInput) (*models.PublicLink, error)
	PublicLink(ctx context.Context, userID, listID uuid.UUID) (*models.PublicLink, error)
	RevokePublicLink(ctx context.Context, userID, listID uuid.UUID) error
	Suggestions(ctx context.Context, userID, listID uuid.UUID) ([]models.Suggestion, error)
	AcceptSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) (*models.ItemView, error)
	RejectSuggestion(ctx context.Context, userID, listID, suggestionID uuid.UUID) error
}

// WishlistHandler handles list deletion, public links and suggestions.
type WishlistHandler struct {
	svc     WishlistService
	baseURL string
}

// NewWishlistHandler creates a new API wishlist handler. baseURL prefixes the
// shareable URL of public links.
func NewWishlistHandler(svc WishlistService, baseURL string) *WishlistHandler {
	return &WishlistHandler{svc: svc, baseURL: baseURL}
}

type publicLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
	MaxViews  *int       `json:"max_views" validate:"omitempty,min=1"`
}

type publicLinkResponse struct {
	*models.PublicLink
	URL string `json:"url"`
}

func (h *WishlistHandler) linkResponse(link *models.PublicLink) publicLinkResponse {
	return publicLinkResponse{PublicLink: link, URL: h.baseURL + "/public/" + link.Token}
}

// Delete removes the list and notifies everyone affected.
func (h *WishlistHandler) Delete(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.DeleteList(c.Context(), r.user.ID, r.listID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteImpact reports how many people deleting the list would affect.
func (h *WishlistHandler) DeleteImpact(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	impact, err := h.svc.DeleteImpact(c.Context(), r.user.ID, r.listID)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, impact)
}

// SharePublicly creates or updates the list's public link.
func (h *WishlistHandler) SharePublicly(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req publicLinkRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	link, err := h.svc.SharePublicly(c.Context(), r.user.ID, r.listID, service.PublicLinkInput{
		ExpiresAt: req.ExpiresAt,
		MaxViews:  req.MaxViews,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, h.linkResponse(link))
}

// PublicLink returns the list's public link.
func (h *WishlistHandler) PublicLink(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	link, err := h.svc.PublicLink(c.Context(), r.user.ID, r.listID)
	if err != nil {
		return respondError(c, err)
	}
	if link == nil {
		return respondError(c, apperr.NotFound("Public link not found"))
	}
	return jsonSuccess(c, h.linkResponse(link))
}

// RevokePublicLink deletes the list's public link.
func (h *WishlistHandler) RevokePublicLink(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.RevokePublicLink(c.Context(), r.user.ID, r.listID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Suggestions lists pending suggestions.
func (h *WishlistHandler) Suggestions(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	suggestions, err := h.svc.Suggestions(c.Context(), r.user.ID, r.listID)
	if err != nil {
		return respondError(c, err)
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	return jsonSuccess(c, suggestions)
}

// AcceptSuggestion turns a suggestion into an item.
func (h *WishlistHandler) AcceptSuggestion(c fiber.Ctx) error {
	r, id, err := suggestionRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.svc.AcceptSuggestion(c.Context(), r.user.ID, r.listID, id)
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, item)
}

// RejectSuggestion discards a suggestion.
func (h *WishlistHandler) RejectSuggestion(c fiber.Ctx) error {
	r, id, err := suggestionRoute(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.RejectSuggestion(c.Context(), r.user.ID, r.listID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func suggestionRoute(c fiber.Ctx) (route, uuid.UUID, error) {
	r, err := memberRoute(c)
	if err != nil {
		return route{}, uuid.Nil, err
	}
	id, ok := paramID(c, "suggestionID")
	if !ok {
		return route{}, uuid.Nil, apperr.NotFound("Suggestion not found")
	}
	return r, id, nil
}
