package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lamaindor/salon-cms/internal/backup"
	"github.com/lamaindor/salon-cms/internal/persist"
	"github.com/lamaindor/salon-cms/internal/site"
)

// CapacityMessage is returned with a full local store.
const CapacityMessage = "local storage is full: export a backup, then delete some gallery images"

// Error writes err as a JSON {error} body with the status its kind maps to.
func Error(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error

	switch {
	case errors.Is(err, site.ErrValidation), errors.Is(err, backup.ErrInvalidDocument):
		status = fiber.StatusBadRequest
	case errors.Is(err, site.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, persist.ErrCapacityExceeded):
		status = fiber.StatusInsufficientStorage
		msg = CapacityMessage
	case errors.As(err, &fe):
		status = fe.Code
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ReorderRequest is the body of every reorder route.
type ReorderRequest struct {
	MovedID  string `json:"moved_id"`
	TargetID string `json:"target_id"`
}

// Body parses the JSON request body into a raw map.
func Body(c *fiber.Ctx) (map[string]any, error) {
	raw := map[string]any{}
	if err := c.BodyParser(&raw); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid json body")
	}

	return raw, nil
}
