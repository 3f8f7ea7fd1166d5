package handlers

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderWebhookSecret = "X-Webhook-Secret"

type DeliveryHandler struct {
	delivery *services.DeliveryService
}

func NewDeliveryHandler(delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

func (h *DeliveryHandler) Dispatch(c *fiber.Ctx) error {
	var req dto.DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return badRequest(c, "orderId is required")
	}

	restaurantID, _ := tenant.GetRestaurantID(c)
	order, err := h.delivery.Dispatch(c.UserContext(), restaurantID, orderID, req.Provider)
	if err != nil {
		return writeError(c, err, "Failed to dispatch order")
	}
	return c.JSON(dto.DispatchResponse{OK: true, Order: *order, Provider: *order.DeliveryProvider})
}

// Webhook takes status callbacks from a delivery provider. There is no user
// token; the provider is named by the path and may be held to a shared secret.
func (h *DeliveryHandler) Webhook(c *fiber.Ctx) error {
	var req dto.DeliveryWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid webhook payload")
	}

	err := h.delivery.ApplyWebhook(c.UserContext(), c.Params("provider"), services.WebhookInput{
		OrderID: req.OrderID,
		Status:  req.Status,
		Secret:  c.Get(HeaderWebhookSecret),
	})
	if err != nil {
		return writeError(c, err, "Failed to process delivery webhook", "provider", c.Params("provider"))
	}
	return c.JSON(dto.OKResponse{OK: true})
}
