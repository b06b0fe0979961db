package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	loginContextKey struct{}
	refreshCallKey  struct{}
)

// RefreshPath is the backend endpoint exchanging a refresh token for a new
// access token
const RefreshPath = "/api/token/refresh/"

// expirySkew treats tokens about to expire as already expired
const expirySkew = 5 * time.Second

var (
	ErrNoTokens       = errors.New("no session tokens configured")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrRefreshFailed  = errors.New("token refresh failed")
)

// WithLoginContext marks calls made with the returned context as belonging
// to the login entry point. A 401 received in a login context is returned
// as is, without a refresh attempt
func WithLoginContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loginContextKey{}, true)
}

// IsLoginContext reports whether ctx was marked by WithLoginContext
func IsLoginContext(ctx context.Context) bool {
	v, _ := ctx.Value(loginContextKey{}).(bool)
	return v
}

func withRefreshCall(ctx context.Context) context.Context {
	return context.WithValue(WithLoginContext(ctx), refreshCallKey{}, true)
}

func isRefreshCall(ctx context.Context) bool {
	v, _ := ctx.Value(refreshCallKey{}).(bool)
	return v
}

func (g *Gateway) canRefresh(ctx context.Context, err error) bool {
	if g.tokens == nil || IsLoginContext(ctx) {
		return false
	}
	rec := api.AsErrorRecord(err)
	return rec.HTTPStatus == http.StatusUnauthorized
}

func (g *Gateway) accessExpired(ctx context.Context) bool {
	if g.tokens == nil || IsLoginContext(ctx) {
		return false
	}
	tok, err := g.tokens.AccessToken(ctx)
	if err != nil || tok == "" {
		return false
	}
	return TokenExpired(tok, g.now())
}

// Refresh exchanges the stored refresh token for a new access token
func (g *Gateway) Refresh(ctx context.Context) error {
	if g.tokens == nil {
		return ErrNoTokens
	}
	return g.refresh(ctx)
}

func (g *Gateway) refresh(ctx context.Context) error {
	rt, err := g.tokens.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if rt == "" {
		return ErrNoRefreshToken
	}

	res, err := g.send(withRefreshCall(ctx), http.MethodPost, RefreshPath,
		JSON(map[string]string{"refresh": rt}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	access := res.Get("access").String()
	if access == "" {
		return fmt.Errorf("%w: response has no access token", ErrRefreshFailed)
	}
	return g.tokens.SetTokens(ctx, access, res.Get("refresh").String())
}

// TokenExpired reports whether token is a JWT whose exp claim is at or
// before now. Tokens that are not JWTs, or carry no exp, never expire
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now.Add(expirySkew))
}
