package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
	"wishlist/internal/service"
)

// ItemService is the item surface of the service layer.
type ItemService interface {
	ListItems(ctx context.Context, userID, listID uuid.UUID) ([]models.ItemView, error)
	GetItem(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ItemView, error)
	CreateItem(ctx context.Context, userID, listID uuid.UUID, in service.NewItem) (*models.ItemView, error)
	Reserve(ctx context.Context, userID, listID, itemID uuid.UUID, in service.ReserveInput) (*models.ItemView, error)
	DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error
	AddContribution(ctx context.Context, userID, listID, itemID uuid.UUID, in service.ContributionInput) (*models.ItemView, error)
	Contributions(ctx context.Context, userID, listID, itemID uuid.UUID) (*models.ContributionBreakdown, error)
}

// ItemHandler handles list items and their contributions for members.
type ItemHandler struct {
	svc ItemService
}

// NewItemHandler creates a new API item handler.
func NewItemHandler(svc ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

type createItemRequest struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	LinkURL     *string  `json:"link_url" validate:"omitempty,httpurl"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,httpurl"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Currency    *string  `json:"currency" validate:"omitempty,len=3"`
}

type reserveRequest struct {
	Status  models.ClaimStatus `json:"reservation_status" validate:"required,oneof=available reserved purchased"`
	Message *string            `json:"reservation_message" validate:"omitempty,max=500"`
}

type contributionRequest struct {
	Amount float64                   `json:"amount" validate:"gt=0"`
	Status models.ContributionStatus `json:"status" validate:"omitempty,oneof=pledged paid"`
}

// route is the caller and the ids addressed by a request.
type route struct {
	user   *models.User
	listID uuid.UUID
	itemID uuid.UUID
}

// memberRoute resolves the caller and the list and item ids of a request.
func memberRoute(c fiber.Ctx) (route, error) {
	user, ok := currentUser(c)
	if !ok {
		return route{}, apperr.Unauthorized("Not authenticated")
	}
	r := route{user: user}
	if r.listID, ok = paramID(c, "id"); !ok {
		return route{}, apperr.NotFound("Wishlist not found")
	}
	if c.Params("itemID") != "" {
		if r.itemID, ok = paramID(c, "itemID"); !ok {
			return route{}, apperr.NotFound("Item not found")
		}
	}
	return r, nil
}

// List returns the list's items.
func (h *ItemHandler) List(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	items, err := h.svc.ListItems(c.Context(), r.user.ID, r.listID)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, items)
}

// Get returns a single item.
func (h *ItemHandler) Get(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.GetItem(c.Context(), r.user.ID, r.listID, r.itemID)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, item)
}

// Create adds an item to the list.
func (h *ItemHandler) Create(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req createItemRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.CreateItem(c.Context(), r.user.ID, r.listID, service.NewItem{
		Title:       req.Title,
		Description: req.Description,
		LinkURL:     req.LinkURL,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Currency:    req.Currency,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, item)
}

// Reserve changes an item's reservation status.
func (h *ItemHandler) Reserve(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req reserveRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.Reserve(c.Context(), r.user.ID, r.listID, r.itemID, service.ReserveInput{
		Status:  req.Status,
		Message: req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, item)
}

// Delete removes an item.
func (h *ItemHandler) Delete(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.svc.DeleteItem(c.Context(), r.user.ID, r.listID, r.itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Contribute records a money contribution toward an item.
func (h *ItemHandler) Contribute(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	var req contributionRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	item, err := h.svc.AddContribution(c.Context(), r.user.ID, r.listID, r.itemID, service.ContributionInput{
		Amount: req.Amount,
		Status: req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return jsonCreated(c, item)
}

// Contributions returns an item's contribution breakdown.
func (h *ItemHandler) Contributions(c fiber.Ctx) error {
	r, err := memberRoute(c)
	if err != nil {
		return respondError(c, err)
	}

	breakdown, err := h.svc.Contributions(c.Context(), r.user.ID, r.listID, r.itemID)
	if err != nil {
		return respondError(c, err)
	}
	return jsonSuccess(c, breakdown)
}
