package handlers

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// KDSHandler serves kitchen screens. The token in the path is the only
// credential.
type KDSHandler struct {
	kds *services.KDSService
}

func NewKDSHandler(kds *services.KDSService) *KDSHandler {
	return &KDSHandler{kds: kds}
}

func (h *KDSHandler) List(c *fiber.Ctx) error {
	restaurantID, err := h.kds.Lookup(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err, "Failed to verify kitchen display token")
	}
	orders, err := h.kds.List(c.UserContext(), restaurantID)
	if err != nil {
		return writeError(c, err, "Failed to load kitchen orders", "restaurant_id", restaurantID.String())
	}
	return c.JSON(dto.KDSOrdersResponse{OK: true, Orders: orders})
}

func (h *KDSHandler) Update(c *fiber.Ctx) error {
	restaurantID, err := h.kds.Lookup(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err, "Failed to verify kitchen display token")
	}

	var req dto.KDSActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return badRequest(c, "orderId is required")
	}

	status, err := h.kds.Transition(c.UserContext(), restaurantID, orderID, req.Action)
	if err != nil {
		return writeError(c, err, "Failed to update order", "restaurant_id", restaurantID.String(), "action", req.Action)
	}
	return c.JSON(dto.KDSActionResponse{OK: true, Status: string(status)})
}
