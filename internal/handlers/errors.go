package handlers

import (
	"errors"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/kitchen"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, kitchen.ErrInvalidTransition),
		errors.Is(err, tenant.ErrNoActiveRestaurant),
		errors.Is(err, tenant.ErrNoRestaurantAssigned):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidPairingCode),
		errors.Is(err, services.ErrInvalidGatewayCredentials),
		errors.Is(err, services.ErrInvalidKDSToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, policy.ErrForbidden),
		errors.Is(err, tenant.ErrTenantMismatch):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// writeError sends the JSON error body for err. Client errors carry the error
// text; server errors log it and send fallback instead.
func writeError(c *fiber.Ctx, err error, fallback string, attrs ...interface{}) error {
	status := statusFor(err)
	if status < fiber.StatusInternalServerError {
		return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	}

	attrs = append(attrs, "error", err.Error(), "request_id", requestID(c), "path", c.Path())
	if caller := tenant.GetCaller(c); caller != nil {
		attrs = append(attrs, "user_id", caller.ID.String())
	}
	if rid, ok := tenant.GetRestaurantID(c); ok {
		attrs = append(attrs, "restaurant_id", rid.String())
	}
	slog.Error(fallback, attrs...)

	if errors.Is(err, services.ErrUpstream) || errors.Is(err, identity.ErrProvider) {
		fallback = "Upstream service failed: " + fallback
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: fallback})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
