package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-pos-ws/internal/cart"
	"go-pos-ws/internal/service"
)

// getUserID returns the authenticated user id set by the auth middleware.
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system"
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// errorJSON maps a service error to the right status code. Domain conditions
// are recoverable and user-facing; anything unrecognized is a persistence or
// programming failure and stays a 500 with the message hidden.
func errorJSON(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case cart.IsInsufficientStock(err),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrDuplicateProductCode),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrNegativeStock),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
