package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoActiveRestaurant   = errors.New("no active restaurant")
	ErrNoRestaurantAssigned = errors.New("no restaurant assigned")
	ErrTenantMismatch       = errors.New("restaurant does not match your active restaurant")
)

// Resolver decides which restaurant scopes a request.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the active restaurant for u. Staff are bound to the
// restaurant in their provider metadata; owners and unrecognized roles use
// their AppConfig pointer.
func (r *Resolver) Resolve(ctx context.Context, u *identity.User) (uuid.UUID, error) {
	if u.Role.IsStaff() {
		if u.RestaurantID == nil || *u.RestaurantID == uuid.Nil {
			return uuid.Nil, ErrNoRestaurantAssigned
		}
		return *u.RestaurantID, nil
	}

	var cfg models.AppConfig
	err := r.db.WithContext(ctx).Where("owner_user_id = ?", u.ID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrNoActiveRestaurant
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load app config: %w", err)
	}
	if cfg.RestaurantID == nil || *cfg.RestaurantID == uuid.Nil {
		return uuid.Nil, ErrNoActiveRestaurant
	}
	return *cfg.RestaurantID, nil
}

// CheckClaimed cross-checks a client-supplied restaurant id against the
// resolved one. An empty claim is accepted.
func CheckClaimed(resolved uuid.UUID, claimed string) error {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return nil
	}
	id, err := uuid.Parse(claimed)
	if err != nil || id != resolved {
		return ErrTenantMismatch
	}
	return nil
}
