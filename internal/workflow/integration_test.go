package workflow

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"adminconsole/internal/api"
	"adminconsole/internal/api/mockapi"
	"adminconsole/internal/sessionfile"
	"adminconsole/internal/state/users"
	"adminconsole/internal/store"
	"adminconsole/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAgainstMockAPI(t *testing.T) {
	srv := mockapi.New(mockapi.WithBcryptCost(bcrypt.MinCost))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := api.NewHTTPClient(ts.URL + mockapi.BasePath)
	require.NoError(t, err)

	st := store.New()
	defer st.Close()
	nav := &recorder{}
	file := sessionfile.New(filepath.Join(t.TempDir(), "session.yaml"))
	r := New(Env{Store: st, API: client, Nav: nav, Sessions: file})
	ctx := context.Background()

	out := r.Login(ctx, api.Credentials{Email: mockapi.AdminEmail, Password: "wrong-password"})
	require.Equal(t, OutcomeFailed, out)
	assert.Equal(t, validation.Errors{"general": {MsgInvalidCredentials}}, st.State().Login.Meta.Errors)

	require.Equal(t, OutcomeOK, r.Login(ctx, api.Credentials{Email: mockapi.AdminEmail, Password: mockapi.AdminPassword}))
	sess := st.State().Session
	assert.Equal(t, int64(1), sess.ID)
	assert.Equal(t, mockapi.AdminEmail, sess.Email)
	assert.Equal(t, "Admin", sess.Role)
	assert.False(t, sess.ExpiresAt.IsZero())

	saved, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, saved.Token)

	r.StartCreate()
	st.Dispatch(users.UpdateForm{Patch: users.FormPatch{
		Identity: users.Field("dave@example.com"),
		Password: users.Field("password1"),
		Role:     users.Field(users.RoleUser),
	}})
	require.Equal(t, OutcomeOK, r.SubmitUser(ctx))

	require.Equal(t, OutcomeOK, r.LoadUsers(ctx, 1))
	assert.Len(t, st.State().Users.Entities, 2)

	require.Equal(t, OutcomeOK, r.DeleteUser(ctx, 2))
	assert.Len(t, st.State().Users.Entities, 1)
	assert.Len(t, srv.Users(), 1)

	r.Logout()
	saved, err = file.Load()
	require.NoError(t, err)
	assert.False(t, saved.Authenticated())
	assert.Equal(t, []string{"users/1/manage", "users/1/manage", LoginPath}, nav.Paths())
}
