package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EdgeGateway is a paired on-premise device. The raw secret is never stored.
type EdgeGateway struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Name         string     `gorm:"size:100" json:"name"`
	SecretHash   string     `gorm:"size:100;not null" json:"-"`
	LastSeenAt   *time.Time `json:"last_seen_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (g *EdgeGateway) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type EdgePairingCode struct {
	Code         string    `gorm:"size:16;primaryKey" json:"code"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	CreatedBy    uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// EdgeEvent is stored at most once per (restaurant, external id).
type EdgeEvent struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_edge_events_external,priority:1" json:"restaurant_id"`
	ExternalID   string         `gorm:"size:128;not null;uniqueIndex:idx_edge_events_external,priority:2" json:"external_id"`
	GatewayID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"gateway_id"`
	Type         string         `gorm:"size:100;not null" json:"type"`
	Payload      datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	OccurredAt   *time.Time     `json:"occurred_at"`
	ReceivedAt   time.Time      `gorm:"not null" json:"received_at"`
}

func (e *EdgeEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
