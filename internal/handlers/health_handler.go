package handlers

import (
	"time"

	"github.com/alexispinzongalindo/islapos/internal/database"
	"github.com/alexispinzongalindo/islapos/internal/delivery"
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *delivery.Registry
}

func NewHealthHandler(db *gorm.DB, registry *delivery.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, dbStatus := "ok", "ok"
	code := fiber.StatusOK
	if err := database.Ping(h.db); err != nil {
		status, dbStatus = "degraded", "unhealthy: "+err.Error()
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:            status,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		DB:                dbStatus,
		DeliveryProviders: len(h.registry.IDs()),
	})
}
