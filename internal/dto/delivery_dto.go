package dto

import "github.com/alexispinzongalindo/islapos/internal/models"

type DispatchRequest struct {
	OrderID  string `json:"orderId"`
	Provider string `json:"provider"`
}

type DispatchResponse struct {
	OK       bool         `json:"ok"`
	Order    models.Order `json:"order"`
	Provider string       `json:"provider"`
}

type DeliveryWebhookRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type KDSOrdersResponse struct {
	OK     bool           `json:"ok"`
	Orders []models.Order `json:"orders"`
}

type KDSActionRequest struct {
	OrderID string `json:"orderId"`
	Action  string `json:"action"`
}

type KDSActionResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}
