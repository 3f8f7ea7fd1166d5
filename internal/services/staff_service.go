package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInviteBinding marks an invitation whose identity was created but whose
// role/restaurant binding could not be completed.
var ErrInviteBinding = errors.New("invitation binding failed")

var pinPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

type InviteInput struct {
	Email        string
	Role         string
	Name         string
	Pin          string
	RestaurantID string
}

type InviteResult struct {
	UserID       uuid.UUID
	Email        string
	Role         identity.Role
	RestaurantID *uuid.UUID
	SystemInvite bool
}

// PartialInviteError is returned when binding failed and the compensating
// delete of the invited identity failed too. UserID is left orphaned in the
// identity provider.
type PartialInviteError struct {
	UserID uuid.UUID
	Err    error
}

func (e *PartialInviteError) Error() string {
	return fmt.Sprintf("invited user %s left unbound: %v", e.UserID, e.Err)
}

func (e *PartialInviteError) Unwrap() error { return e.Err }

func (e *PartialInviteError) Is(target error) bool { return target == ErrInviteBinding }

type StaffService struct {
	db            *gorm.DB
	provider      identity.Provider
	resolver      *tenant.Resolver
	authz         *policy.Authorizer
	operatorEmail string
}

func NewStaffService(db *gorm.DB, provider identity.Provider, resolver *tenant.Resolver, authz *policy.Authorizer, operatorEmail string) *StaffService {
	return &StaffService{
		db:            db,
		provider:      provider,
		resolver:      resolver,
		authz:         authz,
		operatorEmail: operatorEmail,
	}
}

func (s *StaffService) IsSystemOwner(u *identity.User) bool {
	return identity.IsSystemOwner(u.Email, s.operatorEmail)
}

// Invite creates a pending identity and binds it to a role and restaurant.
//
// Callers matching the operator email skip tenant resolution and may invite
// any role, including owners. Everyone else invites into their own resolved
// restaurant and passes the policy. A PIN must be unique within the restaurant.
func (s *StaffService) Invite(ctx context.Context, inviter *identity.User, in InviteInput) (*InviteResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role := identity.ParseRole(in.Role)
	if role == identity.RoleNone {
		return nil, invalidf("role must be one of owner, manager, cashier, kitchen, maintenance, driver, security")
	}
	if in.Pin != "" && !pinPattern.MatchString(in.Pin) {
		return nil, invalidf("pin must be 4 to 8 digits")
	}

	if s.IsSystemOwner(inviter) {
		return s.systemInvite(ctx, email, role, in)
	}

	restaurantID, err := s.resolver.Resolve(ctx, inviter)
	if err != nil {
		return nil, err
	}
	if err := tenant.CheckClaimed(restaurantID, in.RestaurantID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, inviter, restaurantID, policy.ActionStaffInvite); err != nil {
		return nil, err
	}
	switch {
	case role == identity.RoleOwner:
		return nil, fmt.Errorf("%w: only the system owner may invite owners", policy.ErrForbidden)
	case role == identity.RoleManager && inviter.Role == identity.RoleManager:
		return nil, fmt.Errorf("%w: managers may not invite managers", policy.ErrForbidden)
	}

	if err := pinFree(s.db.WithContext(ctx), restaurantID, in.Pin, uuid.Nil); err != nil {
		return nil, err
	}

	return s.inviteAndBind(ctx, email, role, restaurantID, in)
}

// inviteAndBind invites email and binds the new identity to restaurantID. A
// binding failure deletes the invited identity again; when that delete fails
// too the orphan is reported as a PartialInviteError.
func (s *StaffService) inviteAndBind(ctx context.Context, email string, role identity.Role, restaurantID uuid.UUID, in InviteInput) (*InviteResult, error) {
	invited, err := s.provider.InviteUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to invite user: %w", err)
	}

	if err := s.bind(ctx, invited.ID, email, role, restaurantID, in); err != nil {
		slog.Error("staff binding failed, removing invited identity",
			"user_id", invited.ID.String(), "restaurant_id", restaurantID.String(), "error", err)
		if delErr := s.provider.DeleteUser(ctx, invited.ID); delErr != nil && !errors.Is(delErr, identity.ErrUserNotFound) {
			slog.Error("compensating delete failed", "user_id", invited.ID.String(), "error", delErr)
			return nil, &PartialInviteError{UserID: invited.ID, Err: err}
		}
		return nil, fmt.Errorf("%w: %w", ErrInviteBinding, err)
	}

	slog.Info("staff invited", "user_id", invited.ID.String(), "restaurant_id", restaurantID.String(), "role", string(role))
	return &InviteResult{UserID: invited.ID, Email: email, Role: role, RestaurantID: &restaurantID}, nil
}

// systemInvite handles operator invites. Staff roles invited into a
// restaurant get a staff row like any other invite; owners resolve through
// AppConfig and only receive metadata.
func (s *StaffService) systemInvite(ctx context.Context, email string, role identity.Role, in InviteInput) (*InviteResult, error) {
	var restaurantID *uuid.UUID
	if claimed := strings.TrimSpace(in.RestaurantID); claimed != "" {
		id, err := uuid.Parse(claimed)
		if err != nil {
			return nil, invalidf("restaurantId is not a valid id")
		}
		restaurantID = &id
	}

	if restaurantID != nil && role.IsStaff() {
		err := s.db.WithContext(ctx).Select("id").First(&models.Restaurant{}, "id = ?", *restaurantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidf("restaurant not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load restaurant: %w", err)
		}
		if err := pinFree(s.db.WithContext(ctx), *restaurantID, in.Pin, uuid.Nil); err != nil {
			return nil, err
		}

		res, err := s.inviteAndBind(ctx, email, role, *restaurantID, in)
		if err != nil {
			return nil, err
		}
		res.SystemInvite = true
		return res, nil
	}

	invited, err := s.provider.InviteUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to invite user: %w", err)
	}
	if err := s.provider.UpdateAppMetadata(ctx, invited.ID, identity.AppMetadata{Role: role, RestaurantID: restaurantID}); err != nil {
		return nil, &PartialInviteError{UserID: invited.ID, Err: err}
	}

	slog.Info("system owner invited user", "user_id", invited.ID.String(), "role", string(role))
	return &InviteResult{UserID: invited.ID, Email: email, Role: role, RestaurantID: restaurantID, SystemInvite: true}, nil
}

// bind writes the staff row, then the provider metadata. A metadata failure
// removes the row again so storage never points at an unbound identity.
func (s *StaffService) bind(ctx context.Context, userID uuid.UUID, email string, role identity.Role, restaurantID uuid.UUID, in InviteInput) error {
	member := models.StaffMember{
		RestaurantID: restaurantID,
		UserID:       userID,
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         string(role),
		Pin:          in.Pin,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pinFree(tx, restaurantID, member.Pin, userID); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"restaurant_id", "email", "name", "role", "pin", "updated_at"}),
		}).Create(&member).Error
		if err != nil {
			return fmt.Errorf("failed to save staff member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.provider.UpdateAppMetadata(ctx, userID, identity.AppMetadata{Role: role, RestaurantID: &restaurantID}); err != nil {
		if delErr := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.StaffMember{}).Error; delErr != nil {
			slog.Error("failed to remove staff row after metadata failure", "user_id", userID.String(), "error", delErr)
		}
		return fmt.Errorf("failed to set user metadata: %w", err)
	}
	return nil
}

// pinFree reports an input error when another staff member of restaurantID
// already uses pin. An empty pin is never taken.
func pinFree(db *gorm.DB, restaurantID uuid.UUID, pin string, except uuid.UUID) error {
	if pin == "" {
		return nil
	}
	var n int64
	err := db.Model(&models.StaffMember{}).Scopes(tenant.ForTenant(restaurantID)).
		Where("pin = ? AND user_id <> ?", pin, except).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("failed to check pin: %w", err)
	}
	if n > 0 {
		return invalidf("pin already in use")
	}
	return nil
}

// ListPins returns the staff of restaurantID with their POS PINs.
func (s *StaffService) ListPins(ctx context.Context, restaurantID uuid.UUID) ([]models.StaffMember, error) {
	var staff []models.StaffMember
	err := s.db.WithContext(ctx).Scopes(tenant.ForTenant(restaurantID)).
		Order("name ASC, email ASC").
		Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalidf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalidf("email is not valid")
	}
	return email, nil
}
