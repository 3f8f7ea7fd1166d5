package services

import (
	"context"
	"fmt"

	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxBulkDelete = 1000

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// BulkDelete removes orders and their items. Either every id belongs to
// restaurantID and all are deleted, or nothing is.
func (s *OrderService) BulkDelete(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, invalidf("orderIds is required")
	}
	if len(ids) > maxBulkDelete {
		return 0, invalidf("at most %d orders can be deleted at once", maxBulkDelete)
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&models.Order{}).Scopes(tenant.ForTenant(restaurantID)).Where("id IN ?", ids).Count(&owned).Error; err != nil {
			return fmt.Errorf("failed to count orders: %w", err)
		}
		if owned != int64(len(ids)) {
			return fmt.Errorf("%w: one or more orders do not belong to your restaurant", policy.ErrForbidden)
		}

		if err := tx.Scopes(tenant.ForTenant(restaurantID)).Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		result := tx.Scopes(tenant.ForTenant(restaurantID)).Where("id IN ?", ids).Delete(&models.Order{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete orders: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// DeleteAll removes every order of restaurantID.
func (s *OrderService) DeleteAll(ctx context.Context, restaurantID uuid.UUID) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(tenant.ForTenant(restaurantID)).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		result := tx.Scopes(tenant.ForTenant(restaurantID)).Delete(&models.Order{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete orders: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
