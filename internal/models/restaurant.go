package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Restaurant is one tenant. OwnerUserID is the authoritative ownership relation.
type Restaurant struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AppConfig points an owner-role user at the restaurant they currently administer.
type AppConfig struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"owner_user_id"`
	RestaurantID  *uuid.UUID `gorm:"type:uuid;index" json:"restaurant_id"`
	SetupComplete bool       `gorm:"default:false" json:"setup_complete"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (a *AppConfig) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StaffMember is the persisted binding of an invited identity to a restaurant.
// Non-empty PINs are unique per restaurant.
type StaffMember struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_staff_restaurant_pin,priority:1,where:pin <> ''" json:"restaurant_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	Pin          string    `gorm:"size:12;uniqueIndex:idx_staff_restaurant_pin,priority:2" json:"pin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *StaffMember) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
