package tenant

import (
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	callerKey     = "caller"
	restaurantKey = "restaurant_id"
)

// GetTokenSubject extracts the user UUID from the verified JWT in context.
func GetTokenSubject(c *fiber.Ctx) (uuid.UUID, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, false
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func SetCaller(c *fiber.Ctx, u *identity.User) {
	c.Locals(callerKey, u)
}

// GetCaller returns the identity resolved for this request, or nil.
func GetCaller(c *fiber.Ctx) *identity.User {
	if u, ok := c.Locals(callerKey).(*identity.User); ok {
		return u
	}
	return nil
}

func SetRestaurantID(c *fiber.Ctx, id uuid.UUID) {
	c.Locals(restaurantKey, id)
}

// GetRestaurantID returns the active tenant resolved for this request.
func GetRestaurantID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(restaurantKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

const gatewayKey = "edge_gateway"

func SetGateway(c *fiber.Ctx, g *models.EdgeGateway) {
	c.Locals(gatewayKey, g)
}

// GetGateway returns the edge gateway authenticated for this request, or nil.
func GetGateway(c *fiber.Ctx) *models.EdgeGateway {
	if g, ok := c.Locals(gatewayKey).(*models.EdgeGateway); ok {
		return g
	}
	return nil
}
