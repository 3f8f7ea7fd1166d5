package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMalformedUser = errors.New("malformed user record")
	ErrProvider      = errors.New("identity provider request failed")
)

// Provider is the managed auth backend.
type Provider interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	InviteUser(ctx context.Context, email string) (*User, error)
	UpdateAppMetadata(ctx context.Context, id uuid.UUID, meta AppMetadata) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// IsSystemOwner matches the configured operator email exactly, ignoring case
// and surrounding whitespace. An unset operator email never matches.
func IsSystemOwner(email, operatorEmail string) bool {
	op := strings.TrimSpace(operatorEmail)
	if op == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), op)
}
