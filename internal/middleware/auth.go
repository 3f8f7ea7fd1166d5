package middleware

import (
	"errors"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies the Supabase access token in the Authorization header.
func JWTProtected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// Identity loads the caller's current record from the identity provider.
// Role and restaurant come from there, never from token claims.
func Identity(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := tenant.GetTokenSubject(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		user, err := provider.GetUser(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) || errors.Is(err, identity.ErrMalformedUser) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: true, Message: "Unauthorized",
				})
			}
			slog.Error("failed to load caller", "user_id", userID.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify user",
			})
		}

		tenant.SetCaller(c, user)
		return c.Next()
	}
}
