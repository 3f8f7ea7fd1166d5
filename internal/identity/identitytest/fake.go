// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"context"
	"sync"

	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/google/uuid"
)

type Fake struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User

	// Errors to return from the next matching call, if set.
	InviteErr error
	UpdateErr error
	DeleteErr map[uuid.UUID]error
	GetErr    error

	Invited []string
	Deleted []uuid.UUID
}

func NewFake() *Fake {
	return &Fake{
		users:     make(map[uuid.UUID]*identity.User),
		DeleteErr: make(map[uuid.UUID]error),
	}
}

// Add registers a user and returns it.
func (f *Fake) Add(email string, role identity.Role, restaurantID *uuid.UUID) *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &identity.User{ID: uuid.New(), Email: email, Role: role, RestaurantID: restaurantID}
	f.users[u.ID] = u
	return u
}

func (f *Fake) Has(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok
}

func (f *Fake) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *Fake) InviteUser(_ context.Context, email string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InviteErr != nil {
		return nil, f.InviteErr
	}
	u := &identity.User{ID: uuid.New(), Email: email}
	f.users[u.ID] = u
	f.Invited = append(f.Invited, email)
	cp := *u
	return &cp, nil
}

func (f *Fake) UpdateAppMetadata(_ context.Context, id uuid.UUID, meta identity.AppMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	u, ok := f.users[id]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.Role = meta.Role
	u.RestaurantID = meta.RestaurantID
	return nil
}

func (f *Fake) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteErr[id]; err != nil {
		return err
	}
	if _, ok := f.users[id]; !ok {
		return identity.ErrUserNotFound
	}
	delete(f.users, id)
	f.Deleted = append(f.Deleted, id)
	return nil
}
