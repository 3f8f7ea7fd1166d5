package middleware

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// RejectRestricted blocks operational roles (cashier, kitchen, maintenance,
// driver, security). Must run after Identity.
func RejectRestricted() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := tenant.GetCaller(c)
		if caller == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if caller.Role.IsRestricted() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Your role does not have access to this feature",
			})
		}
		return c.Next()
	}
}
