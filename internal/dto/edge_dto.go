package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PairStartRequest struct {
	RestaurantID string `json:"restaurantId"`
}

type PairStartResponse struct {
	OK        bool      `json:"ok"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PairCompleteRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PairCompleteResponse struct {
	OK           bool      `json:"ok"`
	GatewayID    uuid.UUID `json:"gatewayId"`
	Secret       string    `json:"secret"`
	RestaurantID uuid.UUID `json:"restaurantId"`
}

type PushEventsResponse struct {
	OK        bool `json:"ok"`
	Accepted  int  `json:"accepted"`
	Duplicate int  `json:"duplicate"`
}

type PushEventsRequest struct {
	Events []EdgeEvent `json:"events"`
}

type EdgeEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt *time.Time      `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}
