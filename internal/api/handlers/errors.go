package handlers

import (
	"Go-Shopping-Sync/domain"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrStoreNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrRecipeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateItem):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidFoodItem),
		errors.Is(err, domain.ErrEmptyPurchase),
		errors.Is(err, domain.ErrInvalidRecipeID),
		errors.Is(err, domain.ErrUnknownSourceKind),
		errors.As(err, &validationErrs):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func principalFrom(c *fiber.Ctx) domain.Principal {
	principal, _ := c.Locals(domain.PrincipalLocalsKey).(domain.Principal)
	return principal
}

func actorFrom(c *fiber.Ctx) domain.Actor {
	return domain.Actor{Principal: principalFrom(c), ViewerID: c.Get(domain.ViewerIDHeader)}
}
