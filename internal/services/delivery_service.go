package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/delivery"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryService struct {
	db       *gorm.DB
	registry *delivery.Registry
}

func NewDeliveryService(db *gorm.DB, registry *delivery.Registry) *DeliveryService {
	return &DeliveryService{db: db, registry: registry}
}

// Dispatch hands a delivery order to a provider. With no provider given the
// first enabled integration (by provider id) is used.
func (s *DeliveryService) Dispatch(ctx context.Context, restaurantID, orderID uuid.UUID, provider string) (*models.Order, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(tenant.ForTenant(restaurantID)).First(&order, "id = ?", orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.OrderType != models.OrderTypeDelivery {
			return invalidf("order is not a delivery order")
		}
		if order.DeliveryStatus != nil {
			return invalidf("order already dispatched")
		}

		var enabled []models.DeliveryIntegration
		err = tx.Scopes(tenant.ForTenant(restaurantID)).
			Where("enabled = ?", true).
			Order("provider ASC").
			Find(&enabled).Error
		if err != nil {
			return fmt.Errorf("failed to load delivery integrations: %w", err)
		}
		chosen, err := s.pickProvider(enabled, provider)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		status := delivery.StatusDispatched
		result := tx.Model(&models.Order{}).
			Scopes(tenant.ForTenant(restaurantID)).
			Where("id = ? AND delivery_status IS NULL", orderID).
			Updates(map[string]interface{}{
				"delivery_provider":   chosen,
				"delivery_status":     status,
				"delivery_updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to dispatch order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return invalidf("order already dispatched")
		}
		order.DeliveryProvider = &chosen
		order.DeliveryStatus = &status
		order.DeliveryUpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("order dispatched", "restaurant_id", restaurantID.String(), "order_id", orderID.String(), "provider", *order.DeliveryProvider)
	return &order, nil
}

func (s *DeliveryService) pickProvider(enabled []models.DeliveryIntegration, requested string) (string, error) {
	for _, integration := range enabled {
		if !s.registry.Exists(integration.Provider) {
			continue
		}
		if requested == "" || integration.Provider == requested {
			return integration.Provider, nil
		}
	}
	if requested != "" {
		return "", invalidf("delivery provider %q is not enabled", requested)
	}
	return "", invalidf("no delivery provider is enabled")
}

type WebhookInput struct {
	OrderID string
	Status  string
	Secret  string
}

// ApplyWebhook stores a provider-reported status. Updates are last write
// wins and only touch orders dispatched to that provider.
func (s *DeliveryService) ApplyWebhook(ctx context.Context, provider string, in WebhookInput) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !s.registry.Exists(provider) {
		return invalidf("unknown delivery provider")
	}
	if secret := s.registry.WebhookSecret(provider); secret != "" {
		if subtle.ConstantTimeCompare([]byte(secret), []byte(in.Secret)) != 1 {
			return ErrUnauthorized
		}
	}

	orderID, err := uuid.Parse(strings.TrimSpace(in.OrderID))
	if err != nil {
		return invalidf("orderId is required")
	}
	status, ok := delivery.NormalizeStatus(in.Status)
	if !ok {
		return invalidf("status is required")
	}

	result := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND delivery_provider = ?", orderID, provider).
		Updates(map[string]interface{}{
			"delivery_status":     status,
			"delivery_updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update delivery status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	slog.Info("delivery status updated", "order_id", orderID.String(), "provider", provider, "status", status)
	return nil
}

// EnableProvider turns a provider integration on or off for restaurantID.
func (s *DeliveryService) EnableProvider(ctx context.Context, restaurantID uuid.UUID, provider string, enabled bool, storeRef string) (*models.DeliveryIntegration, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !s.registry.Exists(provider) {
		return nil, invalidf("unknown delivery provider")
	}

	var integration models.DeliveryIntegration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(tenant.ForTenant(restaurantID)).Where("provider = ?", provider).First(&integration).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			integration = models.DeliveryIntegration{RestaurantID: restaurantID, Provider: provider}
		} else if err != nil {
			return fmt.Errorf("failed to load integration: %w", err)
		}
		integration.Enabled = enabled
		integration.StoreRef = strings.TrimSpace(storeRef)
		return tx.Save(&integration).Error
	})
	if err != nil {
		return nil, err
	}
	return &integration, nil
}
