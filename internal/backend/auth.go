package backend

import (
	"context"
	"log/slog"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	// Credentials sign a teacher in
	Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// Registration creates a teacher account
	Registration struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name,omitempty"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
)

// Login signs a teacher in and stores the issued tokens. A 401 here is a
// credential failure and never triggers a token refresh
func (c *Client) Login(
	ctx context.Context, creds *Credentials,
) (*api.LoginResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, api.Validation("Email and password are required")
	}
	res, err := c.gw.Post(
		gateway.WithLoginContext(ctx), PathLogin, gateway.JSON(creds),
	)
	if err != nil {
		return nil, err
	}

	out := &api.LoginResult{}
	if err := res.Decode(out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, &api.ErrorRecord{
			Kind:       api.ErrorUnknown,
			Message:    api.MsgParseFailure,
			HTTPStatus: res.Status,
		}
	}
	if err := c.session.Begin(ctx, out); err != nil {
		return nil, err
	}

	slog.Info("Signed in",
		slog.String("email", out.Email))
	return out, nil
}

// Register creates a teacher account
func (c *Client) Register(
	ctx context.Context, r *Registration,
) (*api.NormalizedResponse, error) {
	if r.Email == "" || r.Password == "" || r.FirstName == "" {
		return nil, api.Validation("Name, email, and password are required")
	}
	res, err := c.gw.Post(
		gateway.WithLoginContext(ctx), PathRegister, gateway.JSON(r),
	)
	if err != nil {
		return nil, err
	}
	return gateway.Normalize("teacher", res), nil
}

// Logout discards the local session. The backend keeps no logout route
func (c *Client) Logout(ctx context.Context) error {
	if err := c.session.Clear(ctx); err != nil {
		slog.Error("Failed to clear session", log.Error(err))
		return err
	}
	slog.Info("Signed out")
	return nil
}
