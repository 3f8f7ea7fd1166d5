package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FloorKindTable  = "table"
	FloorKindObject = "object"
	FloorKindArea   = "area"
)

type FloorService struct {
	db *gorm.DB
}

func NewFloorService(db *gorm.DB) *FloorService {
	return &FloorService{db: db}
}

// Delete removes one floor-plan element of restaurantID. Deleting an area
// also removes the tables and objects placed in it. Elements of other
// restaurants are reported as ErrNotFound.
func (s *FloorService) Delete(ctx context.Context, restaurantID uuid.UUID, kind string, id uuid.UUID) error {
	var model interface{}
	switch kind {
	case FloorKindTable:
		model = &models.FloorTable{}
	case FloorKindObject:
		model = &models.FloorObject{}
	case FloorKindArea:
		return s.deleteArea(ctx, restaurantID, id)
	default:
		return invalidf("kind must be one of table, object, area")
	}

	result := s.db.WithContext(ctx).Scopes(tenant.ForTenant(restaurantID)).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FloorService) deleteArea(ctx context.Context, restaurantID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var area models.FloorArea
		err := tx.Scopes(tenant.ForTenant(restaurantID)).First(&area, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load area: %w", err)
		}

		if err := tx.Scopes(tenant.ForTenant(restaurantID)).Where("area_id = ?", id).Delete(&models.FloorTable{}).Error; err != nil {
			return fmt.Errorf("failed to delete area tables: %w", err)
		}
		if err := tx.Scopes(tenant.ForTenant(restaurantID)).Where("area_id = ?", id).Delete(&models.FloorObject{}).Error; err != nil {
			return fmt.Errorf("failed to delete area objects: %w", err)
		}
		return tx.Delete(&area).Error
	})
}
