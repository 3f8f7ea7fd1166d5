package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/metrics"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WipeFailure struct {
	UserID uuid.UUID `json:"userId"`
	Error  string    `json:"error"`
}

// WipeResult reports a finished wipe. Failures lists staff identities that
// could not be removed from the identity provider; tenant data is gone
// regardless.
type WipeResult struct {
	RestaurantID uuid.UUID
	DeletedUsers int
	Failures     []WipeFailure
}

type WipeService struct {
	db       *gorm.DB
	provider identity.Provider
	resolver *tenant.Resolver
	authz    *policy.Authorizer
}

func NewWipeService(db *gorm.DB, provider identity.Provider, resolver *tenant.Resolver, authz *policy.Authorizer) *WipeService {
	return &WipeService{db: db, provider: provider, resolver: resolver, authz: authz}
}

// tenantTables are deleted by restaurant_id, children first.
var tenantTables = []interface{}{
	&models.OrderItem{},
	&models.Order{},
	&models.FloorTable{},
	&models.FloorObject{},
	&models.FloorArea{},
	&models.TimeClockEntry{},
	&models.KDSToken{},
	&models.DeliveryIntegration{},
	&models.EdgeEvent{},
	&models.EdgePairingCode{},
	&models.EdgeGateway{},
	&models.StaffMember{},
}

// Wipe deletes the caller's active restaurant and every identity bound to it.
// confirm must be WIPE in any case.
func (s *WipeService) Wipe(ctx context.Context, caller *identity.User, confirm, claimed string) (*WipeResult, error) {
	if !policy.ConfirmWipe(confirm) {
		return nil, invalidf("confirm must be WIPE")
	}

	restaurantID, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := tenant.CheckClaimed(restaurantID, claimed); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, restaurantID, policy.ActionTenantWipe); err != nil {
		return nil, err
	}

	var staffIDs []uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StaffMember{}).
			Scopes(tenant.ForTenant(restaurantID)).
			Pluck("user_id", &staffIDs).Error; err != nil {
			return fmt.Errorf("failed to list staff: %w", err)
		}
		for _, model := range tenantTables {
			if err := tx.Scopes(tenant.ForTenant(restaurantID)).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete %T: %w", model, err)
			}
		}
		if err := tx.Model(&models.AppConfig{}).
			Where("restaurant_id = ?", restaurantID).
			Updates(map[string]interface{}{"restaurant_id": nil, "setup_complete": false}).Error; err != nil {
			return fmt.Errorf("failed to clear active restaurant: %w", err)
		}
		return tx.Where("id = ?", restaurantID).Delete(&models.Restaurant{}).Error
	})
	if err != nil {
		return nil, err
	}

	result := &WipeResult{RestaurantID: restaurantID}
	for _, userID := range staffIDs {
		if userID == caller.ID {
			continue
		}
		err := s.provider.DeleteUser(ctx, userID)
		if err == nil || errors.Is(err, identity.ErrUserNotFound) {
			result.DeletedUsers++
			continue
		}
		metrics.WipeUserFailures.Inc()
		slog.Error("failed to delete staff identity during wipe",
			"restaurant_id", restaurantID.String(), "user_id", userID.String(), "error", err)
		result.Failures = append(result.Failures, WipeFailure{UserID: userID, Error: err.Error()})
	}

	slog.Warn("restaurant wiped",
		"restaurant_id", restaurantID.String(), "user_id", caller.ID.String(),
		"deleted_users", result.DeletedUsers, "failures", len(result.Failures))
	return result, nil
}
