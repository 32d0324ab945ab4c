package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"wishlist/internal/models"
	"wishlist/internal/validation"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated returns a 201 response with data wrapped in the standard envelope.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// currentUser returns the authenticated user set by the auth middleware.
func currentUser(c fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok && user != nil
}

// paramID parses a uuid route parameter.
func paramID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

var errInvalidBody = errors.New("invalid request body")

// bindBody decodes and validates a JSON body into req. An empty body decodes
// as an empty object.
func bindBody(c fiber.Ctx, req any) error {
	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, req); err != nil {
		return errInvalidBody
	}
	return validation.Struct(req)
}
