package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"wishlist/internal/apperr"
)

// respondError renders a domain error. Anything outside the taxonomy is
// logged and reported as a 500 without detail.
func respondError(c fiber.Ctx, err error) error {
	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":       "error",
			"code":         "reservation_conflict",
			"error":        conflict.Reason,
			"current_item": conflict.Current,
		})
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return jsonError(c, status, "internal server error")
	}
	return jsonError(c, status, apperr.Message(err, err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrReservationConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
