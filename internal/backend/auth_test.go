package backend_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/assert/helpers"
	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

func TestLogin(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/teachers/login/", http.StatusOK, `{
		"access": "acc",
		"refresh": "ref",
		"first_name": "Grace",
		"email": "grace@example.com",
		"session_id": "s-1"
	}`)

	sess := helpers.NewTestSession(t, "", "")
	cl := backend.New(gateway.New(b.URL, sess), sess)
	ctx := context.Background()

	res, err := cl.Login(ctx, &backend.Credentials{
		Email:    "grace@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", res.FirstName)

	req := b.Requests(http.MethodPost, "/api/teachers/login/")[0]
	assert.Equal(t, "grace@example.com", req.JSON("email").String())
	assert.Empty(t, req.Auth)

	assert.True(t, sess.LoggedIn(ctx))
	access, _ := sess.AccessToken(ctx)
	assert.Equal(t, "acc", access)
	id, _ := sess.SessionID(ctx)
	assert.Equal(t, "s-1", id)
	user, err := sess.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.FirstName)

	require.NoError(t, cl.Logout(ctx))
	assert.False(t, sess.LoggedIn(ctx))
}

func TestLoginFailure(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/teachers/login/", http.StatusUnauthorized,
		`{"detail":"No active account found with the given credentials"}`)

	sess := helpers.NewTestSession(t, "", "leftover")
	var redirected bool
	gw := gateway.New(b.URL, sess,
		gateway.WithLoginRequired(func(context.Context) { redirected = true }),
	)
	cl := backend.New(gw, sess)

	_, err := cl.Login(context.Background(), &backend.Credentials{
		Email:    "grace@example.com",
		Password: "wrong",
	})
	rec := api.AsErrorRecord(err)
	require.NotNil(t, rec)
	assert.Equal(t, api.ErrorAuth, rec.Kind)
	assert.Equal(t,
		"No active account found with the given credentials", rec.Message,
	)
	assert.False(t, redirected)
	assert.Zero(t, b.Count(http.MethodPost, gateway.RefreshPath))

	_, err = cl.Login(context.Background(), &backend.Credentials{})
	assert.Equal(t, api.ErrorValidation, api.KindOf(err))
}

func TestLoginWithoutToken(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/teachers/login/", http.StatusOK,
		`{"message":"ok"}`)

	sess := helpers.NewTestSession(t, "", "")
	cl := backend.New(gateway.New(b.URL, sess), sess)
	_, err := cl.Login(context.Background(), &backend.Credentials{
		Email: "a@b.c", Password: "x",
	})
	assert.Equal(t, api.ErrorUnknown, api.KindOf(err))
	assert.False(t, sess.LoggedIn(context.Background()))
}

func TestRegister(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/teachers/register/", http.StatusCreated,
		`{"message":"Registered","teacher_id":31}`)

	cl := helpers.NewTestClient(t, b)
	res, err := cl.Register(context.Background(), &backend.Registration{
		FirstName: "Grace",
		Email:     "grace@example.com",
		Password:  "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("31"), res.ID)

	_, err = cl.Register(context.Background(), &backend.Registration{})
	assert.Equal(t, api.ErrorValidation, api.KindOf(err))
}

func TestAccount(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodGet, "/api/teachers/profile/", http.StatusOK,
		`{"first_name":"Grace","email":"grace@example.com","school":"Hopper High"}`)
	b.On(http.MethodPut, "/api/teachers/profile/update/", http.StatusOK, `{}`)
	b.On(http.MethodPost, "/api/teachers/profile/password/change/",
		http.StatusOK, `{}`)
	b.On(http.MethodGet, "/api/teachers/profile/sessions/", http.StatusOK,
		`[{"id":"s-1","is_current":true},{"id":"s-2"}]`)
	b.On(http.MethodPost, "/api/teachers/profile/sessions/terminate/",
		http.StatusOK, `{}`)
	b.On(http.MethodPost, "/api/teachers/profile/sessions/terminate-all/",
		http.StatusOK, `{}`)

	cl := helpers.NewTestClient(t, b)
	ctx := context.Background()

	p, err := cl.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hopper High", p.School)

	p.School = "Lovelace College"
	require.NoError(t, cl.UpdateProfile(ctx, p))
	upd := b.Requests(http.MethodPut, "/api/teachers/profile/update/")[0]
	assert.Equal(t, "Lovelace College", upd.JSON("school").String())

	assert.Equal(t, api.ErrorValidation,
		api.KindOf(cl.ChangePassword(ctx, &backend.PasswordChange{})))
	require.NoError(t, cl.ChangePassword(ctx, &backend.PasswordChange{
		CurrentPassword: "old",
		NewPassword:     "new",
	}))

	sessions, err := cl.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Current)

	require.NoError(t, cl.TerminateSession(ctx, "s-2"))
	term := b.Requests(http.MethodPost,
		"/api/teachers/profile/sessions/terminate/")[0]
	assert.Equal(t, "s-2", term.JSON("session_id").String())
	assert.Equal(t, api.ErrorValidation,
		api.KindOf(cl.TerminateSession(ctx, "")))
	require.NoError(t, cl.TerminateAllSessions(ctx))
}

func TestStudents(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodGet, "/api/students/", http.StatusOK,
		`[{"id":5,"first_name":"Ada","last_name":"Lovelace"}]`)
	b.On(http.MethodGet, "/api/students/5/", http.StatusOK,
		`{"id":5,"first_name":"Ada"}`)
	b.On(http.MethodPost, "/api/students/create/", http.StatusCreated,
		`{"student_id":6}`)
	b.On(http.MethodPatch, "/api/students/5/patch/", http.StatusOK, `{}`)
	b.On(http.MethodDelete, "/api/students/5/delete/",
		http.StatusNoContent, "")
	b.On(http.MethodPost, "/api/students/by-email/", http.StatusOK,
		`{"id":5,"student_email":"ada@example.com"}`)

	cl := helpers.NewTestClient(t, b)
	ctx := context.Background()

	list, err := cl.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", list[0].LastName)

	s, err := cl.GetStudent(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.FirstName)

	created, err := cl.CreateStudent(ctx, &api.Student{FirstName: "Alan"})
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("6"), created.ID)

	require.NoError(t, cl.UpdateStudent(ctx, "5", map[string]any{
		"year_level": "10",
	}))
	patch := b.Requests(http.MethodPatch, "/api/students/5/patch/")[0]
	assert.Equal(t, "10", patch.JSON("year_level").String())

	require.NoError(t, cl.DeleteStudent(ctx, "5"))

	found, err := cl.FindStudentByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("5"), found.ID)
}
