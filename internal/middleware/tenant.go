package middleware

import (
	"errors"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// RequireTenant resolves the caller's active restaurant and stores it for
// handlers. Must run after Identity.
func RequireTenant(resolver *tenant.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := tenant.GetCaller(c)
		if caller == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		restaurantID, err := resolver.Resolve(c.UserContext(), caller)
		if err != nil {
			if errors.Is(err, tenant.ErrNoActiveRestaurant) || errors.Is(err, tenant.ErrNoRestaurantAssigned) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: true, Message: err.Error(),
				})
			}
			slog.Error("tenant resolution failed", "user_id", caller.ID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to resolve restaurant",
			})
		}

		tenant.SetRestaurantID(c, restaurantID)
		return c.Next()
	}
}
