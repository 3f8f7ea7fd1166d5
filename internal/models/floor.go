package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FloorArea struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	SortOrder    int       `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *FloorArea) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type FloorTable struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	AreaID       *uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Label        string     `gorm:"size:50;not null" json:"label"`
	Seats        int        `gorm:"default:2" json:"seats"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (t *FloorTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// FloorObject is a non-seating fixture on the floor plan (bar, wall, plant).
type FloorObject struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	AreaID       *uuid.UUID `gorm:"type:uuid;index" json:"area_id"`
	Kind         string     `gorm:"size:50;not null" json:"kind"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (o *FloorObject) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
