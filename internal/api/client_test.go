package api_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/api/mockapi"
	"adminconsole/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func newClient(t *testing.T, opts ...mockapi.Option) (*api.HTTPClient, *mockapi.Server) {
	t.Helper()
	srv := mockapi.New(append([]mockapi.Option{mockapi.WithBcryptCost(bcrypt.MinCost)}, opts...)...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := api.NewHTTPClient(ts.URL + mockapi.BasePath)
	require.NoError(t, err)
	return c, srv
}

func adminToken(t *testing.T, c *api.HTTPClient) string {
	t.Helper()
	res, err := c.Login(context.Background(), api.Credentials{Email: mockapi.AdminEmail, Password: mockapi.AdminPassword})
	require.NoError(t, err)
	return res.Token
}

func TestNewHTTPClientRejectsBadURL(t *testing.T) {
	_, err := api.NewHTTPClient("ftp://example.com")
	assert.Error(t, err)

	_, err = api.NewHTTPClient("://nope")
	assert.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	c, _ := newClient(t)

	res, err := c.Login(context.Background(), api.Credentials{Email: mockapi.AdminEmail, Password: mockapi.AdminPassword})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.NotEmpty(t, res.Token)
}

func TestLoginInvalidCredentialsIsDomainError(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.Login(context.Background(), api.Credentials{Email: mockapi.AdminEmail, Password: "wrong"})

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.CodeInvalidCredentials, apiErr.Code)
	assert.False(t, apiErr.Unauthorized())
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := api.NewHTTPClient("http://" + addr + "/api/v1")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), api.Credentials{Email: "a@example.com", Password: "x"})
	require.Error(t, err)
	var apiErr *api.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestNonJSONBodyIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer ts.Close()
	c, err := api.NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), api.Credentials{})
	require.Error(t, err)
	var apiErr *api.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestEmptyEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()
	c, err := api.NewHTTPClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), api.Credentials{})
	assert.ErrorIs(t, err, api.ErrEmptyEnvelope)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/v1/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer ts.Close()
	c, err := api.NewHTTPClient(ts.URL + "/v1/")
	require.NoError(t, err)

	users, err := c.ListUsers(context.Background(), "tok", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestUserCRUD(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()
	token := adminToken(t, c)

	created, err := c.CreateUser(ctx, token, api.User{Identity: "carol@example.com", Password: "password1", Role: "User"})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", created.Identity)
	assert.Empty(t, created.Password)

	updated, err := c.UpdateUser(ctx, token, created.ID, api.User{Identity: "carol@example.com", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", updated.Role)

	list, err := c.ListUsers(ctx, token, 1, 15)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, c.DeleteUser(ctx, token, created.ID))
	assert.Len(t, srv.Users(), 1)

	err = c.DeleteUser(ctx, token, created.ID)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.CodeNotFound, apiErr.Code)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.ListUsers(context.Background(), "", 1, 15)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Unauthorized())
}

func TestTimeoutIsTransportError(t *testing.T) {
	srv := mockapi.New(mockapi.WithBcryptCost(bcrypt.MinCost), mockapi.WithLatency(time.Second))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := api.NewHTTPClient(ts.URL+mockapi.BasePath, api.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Login(context.Background(), api.Credentials{Email: mockapi.AdminEmail, Password: mockapi.AdminPassword})
	require.Error(t, err)
	var apiErr *api.Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestSlowRequestIsLoggedAsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.UseLogger(zap.New(core), logging.Options{})
	t.Cleanup(logging.CloseAll)

	srv := mockapi.New(mockapi.WithBcryptCost(bcrypt.MinCost), mockapi.WithLatency(30*time.Millisecond))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	c, err := api.NewHTTPClient(ts.URL+mockapi.BasePath, api.WithSlowThreshold(time.Millisecond))
	require.NoError(t, err)
	_, err = c.Login(context.Background(), api.Credentials{Email: mockapi.AdminEmail, Password: mockapi.AdminPassword})
	require.NoError(t, err)

	slow := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("POST /login took").All()
	require.Len(t, slow, 1)
	assert.Equal(t, "api", slow[0].LoggerName)
}

func TestFastRequestIsNotWarned(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.UseLogger(zap.New(core), logging.Options{})
	t.Cleanup(logging.CloseAll)

	c, _ := newClient(t)
	_ = adminToken(t, c)

	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("took").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("POST /login completed in").Len())
}
