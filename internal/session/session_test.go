package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/session"
	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/pkg/api"
)

func TestBeginAndClear(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := session.New(kv)

	assert.False(t, s.LoggedIn(ctx))

	err := s.Begin(ctx, &api.LoginResult{
		Access:    "access-1",
		Refresh:   "refresh-1",
		FirstName: "Ada",
		Email:     "ada@school.edu",
		SessionID: "sess-9",
	})
	require.NoError(t, err)
	assert.True(t, s.LoggedIn(ctx))

	tok, err := s.AccessToken(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "access-1", tok)

	tok, err = s.RefreshToken(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "refresh-1", tok)

	id, err := s.SessionID(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "sess-9", id)

	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "ada@school.edu", user.Email)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.LoggedIn(ctx))
	for _, k := range []string{
		session.KeyAccessToken, session.KeyRefreshToken,
		session.KeyUser, session.KeySessionID,
	} {
		_, err := kv.Get(ctx, k)
		assert.ErrorIs(t, err, store.ErrNotFound, k)
	}

	user, err = s.User(ctx)
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestSetTokensKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	s := session.New(store.NewMemory())

	require.NoError(t, s.SetTokens(ctx, "a1", "r1"))
	require.NoError(t, s.SetTokens(ctx, "a2", ""))

	access, _ := s.AccessToken(ctx)
	refresh, _ := s.RefreshToken(ctx)
	assert.Equal(t, "a2", access)
	assert.Equal(t, "r1", refresh)
}
