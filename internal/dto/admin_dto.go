package dto

import (
	"time"

	"github.com/google/uuid"
)

type DeleteFloorRequest struct {
	Kind string `json:"kind" query:"kind"`
	ID   string `json:"id" query:"id"`
}

type FullWipeRequest struct {
	Confirm      string `json:"confirm"`
	RestaurantID string `json:"restaurantId"`
}

type FullWipeResponse struct {
	OK           bool          `json:"ok"`
	RestaurantID uuid.UUID     `json:"restaurantId"`
	DeletedUsers int           `json:"deletedUsers"`
	Warning      string        `json:"warning,omitempty"`
	Failures     []WipeFailure `json:"failures,omitempty"`
}

type WipeFailure struct {
	UserID uuid.UUID `json:"userId"`
	Error  string    `json:"error"`
}

type InviteUserRequest struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Pin          string `json:"pin"`
	RestaurantID string `json:"restaurantId"`
}

type InviteUserResponse struct {
	OK           bool       `json:"ok"`
	UserID       uuid.UUID  `json:"userId"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurantId"`
}

type DeleteOrdersRequest struct {
	OrderIDs     []string `json:"orderIds"`
	All          bool     `json:"all"`
	RestaurantID string   `json:"restaurantId"`
}

type DeleteOrdersResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

type SupportAccessResponse struct {
	OK      bool `json:"ok"`
	Allowed bool `json:"allowed"`
}

type SystemOwnerResponse struct {
	OK            bool `json:"ok"`
	IsSystemOwner bool `json:"isSystemOwner"`
}

type IssueKDSTokenRequest struct {
	Label string `json:"label"`
}

type KDSTokenResponse struct {
	OK        bool      `json:"ok"`
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeliveryIntegrationRequest struct {
	Provider string `json:"provider"`
	Enabled  bool   `json:"enabled"`
	StoreRef string `json:"storeRef"`
}
