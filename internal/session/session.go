// Package session keeps the signed-in teacher's tokens and identity in a
// durable store and watches the backend for remote session termination
package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Store holds the local session state. It satisfies gateway.Tokens
	Store struct {
		kv store.Store
	}

	// User is the identity recorded at login
	User struct {
		FirstName string `json:"first_name,omitempty"`
		Email     string `json:"email,omitempty"`
	}
)

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeySessionID    = "session_id"
)

var sessionKeys = []string{
	KeyAccessToken, KeyRefreshToken, KeyUser, KeySessionID,
}

// New creates a session Store over kv
func New(kv store.Store) *Store {
	return &Store{kv: kv}
}

// Begin records the tokens and identity returned by a successful login
func (s *Store) Begin(ctx context.Context, res *api.LoginResult) error {
	if err := s.SetTokens(ctx, res.Access, res.Refresh); err != nil {
		return err
	}
	user, err := json.Marshal(User{
		FirstName: res.FirstName,
		Email:     res.Email,
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyUser, string(user)); err != nil {
		return err
	}
	if res.SessionID != "" {
		return s.kv.Set(ctx, KeySessionID, res.SessionID)
	}
	return nil
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// SessionID returns the backend session identifier, if one was issued
func (s *Store) SessionID(ctx context.Context) (string, error) {
	return s.get(ctx, KeySessionID)
}

// User returns the identity recorded at login, or nil
func (s *Store) User(ctx context.Context) (*User, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetTokens stores an access token and, when not empty, a refresh token
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.kv.Set(ctx, KeyAccessToken, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return s.kv.Set(ctx, KeyRefreshToken, refresh)
}

// LoggedIn reports whether an access token is present
func (s *Store) LoggedIn(ctx context.Context) bool {
	tok, err := s.AccessToken(ctx)
	return err == nil && tok != ""
}

// Clear removes every piece of local session state
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, k := range sessionKeys {
		if err := s.kv.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	return v, err
}
