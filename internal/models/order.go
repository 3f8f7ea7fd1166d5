package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	TicketNumber      int         `gorm:"not null;default:0" json:"ticket_number"`
	Status            string      `gorm:"size:20;not null;default:'open';index" json:"status"`
	OrderType         string      `gorm:"size:20;not null;default:'dine_in'" json:"order_type"`
	TableID           *uuid.UUID  `gorm:"type:uuid" json:"table_id"`
	TotalCents        int64       `gorm:"not null;default:0" json:"total_cents"`
	DeliveryProvider  *string     `gorm:"size:50" json:"delivery_provider"`
	DeliveryStatus    *string     `gorm:"size:50" json:"delivery_status"`
	DeliveryUpdatedAt *time.Time  `json:"delivery_updated_at"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Qty          int            `gorm:"not null;default:1" json:"qty"`
	PriceCents   int64          `gorm:"not null;default:0" json:"price_cents"`
	Modifiers    datatypes.JSON `gorm:"type:jsonb" json:"modifiers,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TimeClockEntry is one punch. The latest entry per user decides the current state.
type TimeClockEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index:idx_time_clock_user,priority:1" json:"restaurant_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_time_clock_user,priority:2" json:"user_id"`
	Action       string    `gorm:"size:20;not null" json:"action"`
	At           time.Time `gorm:"not null;index" json:"at"`
	Note         string    `gorm:"size:500" json:"note,omitempty"`
}

func (e *TimeClockEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// KDSToken grants a kitchen screen access to one restaurant's active orders.
type KDSToken struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Token        string     `gorm:"size:64;not null;uniqueIndex" json:"token"`
	Label        string     `gorm:"size:100" json:"label"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (k *KDSToken) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

type DeliveryIntegration struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_delivery_restaurant_provider,priority:1" json:"restaurant_id"`
	Provider     string    `gorm:"size:50;not null;uniqueIndex:idx_delivery_restaurant_provider,priority:2" json:"provider"`
	Enabled      bool      `gorm:"default:false" json:"enabled"`
	StoreRef     string    `gorm:"size:255" json:"store_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (d *DeliveryIntegration) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
