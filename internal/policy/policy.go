// Package policy decides whether a caller may perform an administrative
// action against a restaurant.
package policy

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

var ErrForbidden = errors.New("forbidden")

type Action string

const (
	ActionFloorEdit          Action = "floor.edit"
	ActionStaffInvite        Action = "staff.invite"
	ActionSupportAccess      Action = "support.access"
	ActionTransactionsDelete Action = "transactions.delete"
	ActionTenantWipe         Action = "tenant.wipe"
	ActionEdgePair           Action = "edge.pair"
	ActionKDSManage          Action = "kds.manage"
	ActionDeliveryManage     Action = "delivery.manage"
)

var adminActions = map[Action]bool{
	ActionFloorEdit:          true,
	ActionStaffInvite:        true,
	ActionSupportAccess:      true,
	ActionTransactionsDelete: true,
	ActionTenantWipe:         true,
	ActionEdgePair:           true,
	ActionKDSManage:          true,
	ActionDeliveryManage:     true,
}

// Subject is the caller as the policy sees it.
type Subject struct {
	UserID       uuid.UUID
	Role         identity.Role
	RestaurantID *uuid.UUID
}

func SubjectOf(u *identity.User) Subject {
	return Subject{UserID: u.ID, Role: u.Role, RestaurantID: u.RestaurantID}
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide is the whole policy. ownerUserID is the persisted owner of target
// and is only consulted for owner-class callers.
func Decide(s Subject, target, ownerUserID uuid.UUID, action Action) Decision {
	if !adminActions[action] {
		return deny("unknown action")
	}
	if s.Role.IsRestricted() {
		return deny(fmt.Sprintf("role %s may not perform %s", s.Role, action))
	}
	if target == uuid.Nil {
		return deny("no target restaurant")
	}

	if s.Role == identity.RoleManager {
		if action == ActionTenantWipe {
			return deny("only the restaurant owner may wipe it")
		}
		if s.RestaurantID == nil || *s.RestaurantID != target {
			return deny("manager is not assigned to this restaurant")
		}
		return allow()
	}

	if ownerUserID == uuid.Nil || ownerUserID != s.UserID {
		return deny("not the owner of this restaurant")
	}
	return allow()
}

// ConfirmWipe reports whether the typed confirmation matches WIPE.
func ConfirmWipe(confirm string) bool {
	return strings.EqualFold(strings.TrimSpace(confirm), "WIPE")
}

// Authorizer applies Decide with the owner relation loaded from storage.
type Authorizer struct {
	db *gorm.DB
}

func NewAuthorizer(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// Authorize returns nil when allowed and an error wrapping ErrForbidden otherwise.
func (a *Authorizer) Authorize(ctx context.Context, u *identity.User, target uuid.UUID, action Action) error {
	subject := SubjectOf(u)

	var ownerID uuid.UUID
	if !subject.Role.IsRestricted() && subject.Role != identity.RoleManager && target != uuid.Nil {
		var restaurant models.Restaurant
		err := a.db.WithContext(ctx).Select("id", "owner_user_id").First(&restaurant, "id = ?", target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: restaurant not found", ErrForbidden)
		}
		if err != nil {
			return fmt.Errorf("failed to load restaurant: %w", err)
		}
		ownerID = restaurant.OwnerUserID
	}

	if d := Decide(subject, target, ownerID, action); !d.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return nil
}
