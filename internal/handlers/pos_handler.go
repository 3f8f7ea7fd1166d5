package handlers

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type POSHandler struct {
	staff *services.StaffService
	clock *services.TimeClockService
}

func NewPOSHandler(staff *services.StaffService, clock *services.TimeClockService) *POSHandler {
	return &POSHandler{staff: staff, clock: clock}
}

func (h *POSHandler) StaffPins(c *fiber.Ctx) error {
	restaurantID, _ := tenant.GetRestaurantID(c)
	members, err := h.staff.ListPins(c.UserContext(), restaurantID)
	if err != nil {
		return writeError(c, err, "Failed to list staff")
	}

	staff := make([]dto.StaffPin, len(members))
	for i, m := range members {
		staff[i] = dto.StaffPin{UserID: m.UserID, Name: m.Name, Email: m.Email, Role: m.Role, Pin: m.Pin}
	}
	return c.JSON(dto.StaffPinsResponse{OK: true, Staff: staff})
}

func (h *POSHandler) TimeClock(c *fiber.Ctx) error {
	var req dto.TimeClockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	restaurantID, _ := tenant.GetRestaurantID(c)
	entry, err := h.clock.Punch(c.UserContext(), restaurantID, tenant.GetCaller(c).ID, services.PunchInput{
		Action: req.Action,
		Note:   req.Note,
		Pin:    req.Pin,
	})
	if err != nil {
		return writeError(c, err, "Failed to record punch")
	}
	return c.JSON(dto.TimeClockResponse{OK: true, ID: entry.ID, UserID: entry.UserID, Action: entry.Action, At: entry.At})
}
