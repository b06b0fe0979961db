package backend

import (
	"context"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

// PasswordChange replaces the signed-in teacher's password
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Profile returns the signed-in teacher's profile
func (c *Client) Profile(ctx context.Context) (*api.Profile, error) {
	res := &api.Profile{}
	if err := c.getJSON(ctx, PathProfile, res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateProfile replaces profile fields
func (c *Client) UpdateProfile(ctx context.Context, p *api.Profile) error {
	return discard(c.gw.Put(ctx, PathProfileUpdate, gateway.JSON(p)))
}

// ChangePassword changes the signed-in teacher's password
func (c *Client) ChangePassword(
	ctx context.Context, req *PasswordChange,
) error {
	if req.NewPassword == "" {
		return api.Validation("New password is required")
	}
	return discard(c.gw.Post(ctx, PathPassword, gateway.JSON(req)))
}

// Sessions returns the teacher's active login sessions
func (c *Client) Sessions(
	ctx context.Context,
) ([]*api.AccountSession, error) {
	var res []*api.AccountSession
	if err := c.getJSON(ctx, PathSessions, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// TerminateSession ends one login session
func (c *Client) TerminateSession(ctx context.Context, id string) error {
	if id == "" {
		return missingID("session")
	}
	return discard(c.gw.Post(ctx, PathTerminate,
		gateway.JSON(map[string]string{"session_id": id}),
	))
}

// TerminateAllSessions ends every login session other than the current one
func (c *Client) TerminateAllSessions(ctx context.Context) error {
	return discard(c.gw.Post(ctx, PathTerminateAll, nil))
}
