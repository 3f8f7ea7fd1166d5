package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/kitchen"
	"github.com/alexispinzongalindo/islapos/internal/metrics"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidKDSToken = errors.New("invalid kitchen display token")

type KDSService struct {
	db *gorm.DB
}

func NewKDSService(db *gorm.DB) *KDSService {
	return &KDSService{db: db}
}

// IssueToken mints a new kitchen display token for restaurantID.
func (s *KDSService) IssueToken(ctx context.Context, restaurantID uuid.UUID, label string) (*models.KDSToken, error) {
	raw, err := randomToken(24)
	if err != nil {
		return nil, err
	}
	token := &models.KDSToken{
		RestaurantID: restaurantID,
		Token:        raw,
		Label:        strings.TrimSpace(label),
	}
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create kds token: %w", err)
	}
	return token, nil
}

// RevokeToken disables a token of restaurantID. Tokens of other restaurants
// are reported as ErrNotFound.
func (s *KDSService) RevokeToken(ctx context.Context, restaurantID, tokenID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.KDSToken{}).
		Scopes(tenant.ForTenant(restaurantID)).
		Where("id = ? AND revoked_at IS NULL", tokenID).
		Update("revoked_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to revoke kds token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Lookup returns the restaurant a live token belongs to.
func (s *KDSService) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, ErrInvalidKDSToken
	}
	var kds models.KDSToken
	err := s.db.WithContext(ctx).Where("token = ? AND revoked_at IS NULL", token).First(&kds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrInvalidKDSToken
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up kds token: %w", err)
	}
	return kds.RestaurantID, nil
}

// List returns the orders a kitchen screen shows, oldest first.
func (s *KDSService) List(ctx context.Context, restaurantID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Scopes(tenant.ForTenant(restaurantID)).
		Where("status IN ?", kitchen.DisplayStatuses()).
		Preload("Items").
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list kitchen orders: %w", err)
	}
	return orders, nil
}

// Transition applies bump or recall to one order. The update only lands if
// the status is still the one the transition was computed from.
func (s *KDSService) Transition(ctx context.Context, restaurantID, orderID uuid.UUID, rawAction string) (kitchen.Status, error) {
	action, ok := kitchen.ParseAction(strings.ToLower(strings.TrimSpace(rawAction)))
	if !ok {
		return "", invalidf("action must be bump or recall")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Scopes(tenant.ForTenant(restaurantID)).
		Select("id", "status").
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load order: %w", err)
	}

	current := kitchen.Status(order.Status)
	next, err := kitchen.Apply(action, current)
	if err != nil {
		metrics.KDSTransitions.WithLabelValues(string(action), "invalid").Inc()
		return current, err
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(tenant.ForTenant(restaurantID)).
		Where("id = ? AND status = ?", orderID, string(current)).
		Update("status", string(next))
	if result.Error != nil {
		return current, fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.KDSTransitions.WithLabelValues(string(action), "conflict").Inc()
		return current, ErrConflict
	}

	metrics.KDSTransitions.WithLabelValues(string(action), "ok").Inc()
	return next, nil
}
