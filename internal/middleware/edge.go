package middleware

import (
	"errors"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

const (
	HeaderGatewayID     = "X-Edge-Gateway-Id"
	HeaderGatewaySecret = "X-Edge-Gateway-Secret"
)

// EdgeGatewayAuth authenticates a paired device by its id and shared secret
// headers. Bearer tokens are not accepted here.
func EdgeGatewayAuth(edge *services.EdgeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		gateway, err := edge.AuthenticateGateway(c.UserContext(), c.Get(HeaderGatewayID), c.Get(HeaderGatewaySecret))
		if err != nil {
			if errors.Is(err, services.ErrInvalidGatewayCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Invalid gateway credentials",
				})
			}
			slog.Error("gateway authentication failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to authenticate gateway",
			})
		}

		tenant.SetGateway(c, gateway)
		tenant.SetRestaurantID(c, gateway.RestaurantID)
		return c.Next()
	}
}
