package identity

import (
	"strings"

	"github.com/google/uuid"
)

// User is a verified caller. Role and RestaurantID come only from the
// provider's app_metadata, which end users cannot write themselves.
type User struct {
	ID           uuid.UUID
	Email        string
	Role         Role
	RestaurantID *uuid.UUID
}

// Record is the user object as the auth provider serializes it.
type Record struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// AppMetadata is the typed subset of app_metadata this service writes.
type AppMetadata struct {
	Role         Role
	RestaurantID *uuid.UUID
}

func (m AppMetadata) toMap() map[string]interface{} {
	out := map[string]interface{}{"role": string(m.Role)}
	if m.RestaurantID != nil {
		out["restaurant_id"] = m.RestaurantID.String()
	} else {
		out["restaurant_id"] = nil
	}
	return out
}

// ToUser validates a provider record at the boundary.
func (r *Record) ToUser() (*User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil || id == uuid.Nil {
		return nil, ErrMalformedUser
	}

	u := &User{
		ID:    id,
		Email: strings.TrimSpace(r.Email),
		Role:  ParseRole(r.AppMetadata["role"]),
	}
	if raw, ok := r.AppMetadata["restaurant_id"].(string); ok {
		if rid, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			u.RestaurantID = &rid
		}
	}
	return u, nil
}
