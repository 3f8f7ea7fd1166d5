package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// GoTrueClient talks to the Supabase auth admin API with the service-role key.
// Build one per process and share it.
type GoTrueClient struct {
	api gotrue.Client
}

func NewGoTrueClient(supabaseURL, serviceKey string) *GoTrueClient {
	api := gotrue.New("", serviceKey).
		WithCustomGoTrueURL(strings.TrimRight(supabaseURL, "/") + "/auth/v1").
		WithToken(serviceKey).
		WithClient(http.Client{Timeout: 10 * time.Second})
	return &GoTrueClient{api: api}
}

func (c *GoTrueClient) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.api.AdminGetUser(types.AdminGetUserRequest{UserID: id})
	if err != nil {
		return nil, classify(err)
	}
	return recordOf(resp.User).ToUser()
}

// InviteUser sends the invitation email. The link lands on the project's
// configured site URL.
func (c *GoTrueClient) InviteUser(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.api.Invite(types.InviteRequest{Email: email})
	if err != nil {
		return nil, classify(err)
	}
	return recordOf(resp.User).ToUser()
}

func (c *GoTrueClient) UpdateAppMetadata(ctx context.Context, id uuid.UUID, meta AppMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.api.AdminUpdateUser(types.AdminUpdateUserRequest{UserID: id, AppMetadata: meta.toMap()})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *GoTrueClient) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.api.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id}); err != nil {
		return classify(err)
	}
	return nil
}

func recordOf(u types.User) *Record {
	return &Record{
		ID:           u.ID.String(),
		Email:        u.Email,
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
	}
}

// classify maps client errors onto this package's sentinels. The client
// reports HTTP failures only as "response status code N: body".
func classify(err error) error {
	if strings.HasPrefix(err.Error(), fmt.Sprintf("response status code %d", http.StatusNotFound)) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
