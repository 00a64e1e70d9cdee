package ui

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"adminconsole/internal/api"
	"adminconsole/internal/api/mockapi"
	"adminconsole/internal/sessionfile"
	"adminconsole/internal/state/session"
	"adminconsole/internal/store"
	"adminconsole/internal/workflow"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store  *store.Store
	router *Router
	server *mockapi.Server
	file   *sessionfile.File
}

func newTestModel(t *testing.T, opts ...store.Option) (Model, *fixture) {
	t.Helper()
	srv := mockapi.New(mockapi.WithBcryptCost(bcrypt.MinCost))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.NewHTTPClient(ts.URL + mockapi.BasePath)
	require.NoError(t, err)

	st := store.New(opts...)
	t.Cleanup(st.Close)

	start := workflow.LoginPath
	if sess := st.State().Session; sess.Authenticated() {
		start = workflow.ManagePath(sess.ID)
	}
	router := NewRouter(start)
	file := sessionfile.New(filepath.Join(t.TempDir(), "session.yaml"))
	runner := workflow.New(workflow.Env{Store: st, API: client, Nav: router, Sessions: file})

	m := NewModel(Options{Store: st, Runner: runner, Router: router, Styles: NewStyles(LightTheme())})
	return m, &fixture{store: st, router: router, server: srv, file: file}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// finish runs a workflow command and feeds its result back, following any
// workflow the resulting page change starts.
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		done, ok := msg.(workflowDoneMsg)
		require.True(t, ok, "expected a workflow result, got %T", msg)
		next, nextCmd := m.Update(done)
		m = next.(Model)
		cmd = nil
		if m.page == PageUsers && nextCmd != nil {
			cmd = nextCmd
		}
	}
	return m
}

func loggedIn(t *testing.T) (Model, *fixture) {
	t.Helper()
	m, f := newTestModel(t)
	m, cmd := press(t, m, mockapi.AdminEmail, "tab", mockapi.AdminPassword, "enter")
	require.NotNil(t, cmd)
	m = finish(t, m, cmd)
	require.Equal(t, PageUsers, m.Page())
	return m, f
}

func TestStartsOnLogin(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, PageLogin, m.Page())
	assert.Contains(t, m.View(), "Sign in")
}

func TestStartsOnUsersWithSession(t *testing.T) {
	m, _ := newTestModel(t, store.WithSession(session.State{ID: 1, Token: "restored"}))
	assert.Equal(t, PageUsers, m.Page())
}

func TestLoginValidationShowsErrors(t *testing.T) {
	m, f := newTestModel(t)

	m, cmd := press(t, m, "not-an-email", "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, PageLogin, m.Page())
	assert.Contains(t, m.View(), "Must be a valid email address.")
	assert.Equal(t, int64(0), f.server.Logins())
}

func TestLoginWrongPassword(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := press(t, m, mockapi.AdminEmail, "tab", "wrong-password", "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, PageLogin, m.Page())
	assert.Contains(t, m.View(), workflow.MsgInvalidCredentials)
}

func TestLoginLoadsUsers(t *testing.T) {
	m, f := loggedIn(t)

	assert.Equal(t, "users/1/manage", f.router.Path())
	assert.Len(t, f.store.State().Users.Entities, 1)
	assert.Contains(t, m.View(), mockapi.AdminEmail)

	saved, err := f.file.Load()
	require.NoError(t, err)
	assert.True(t, saved.Authenticated())
}

func TestCreateAndDeleteUser(t *testing.T) {
	m, f := loggedIn(t)

	m, _ = press(t, m, "n")
	require.Equal(t, PageEdit, m.Page())
	assert.Contains(t, m.View(), "New user")

	m, _ = press(t, m, "erin@example.com", "tab", "password1", "tab", "right")
	assert.Equal(t, "Admin", f.store.State().Users.Form.Role)

	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)
	require.Equal(t, PageUsers, m.Page())
	require.Len(t, f.store.State().Users.Entities, 2)
	assert.Equal(t, "Admin", f.store.State().Users.Entities[1].Role)
	assert.Contains(t, m.View(), "User created.")

	m, _ = press(t, m, "down", "d")
	assert.Contains(t, m.View(), "Delete user 2?")
	m, cmd = press(t, m, "y")
	m = finish(t, m, cmd)

	assert.Len(t, f.store.State().Users.Entities, 1)
	assert.Len(t, f.server.Users(), 1)
}

func TestDeleteCanBeCancelled(t *testing.T) {
	m, f := loggedIn(t)

	m, _ = press(t, m, "d", "x")

	assert.Contains(t, m.View(), "Delete cancelled.")
	assert.Len(t, f.server.Users(), 1)
}

func TestEditInvalidStaysOnForm(t *testing.T) {
	m, f := loggedIn(t)

	m, _ = press(t, m, "e")
	require.Equal(t, PageEdit, m.Page())
	assert.Contains(t, m.View(), "Edit user #1")

	m, _ = press(t, m, "tab", "short")
	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, PageEdit, m.Page())
	assert.True(t, f.store.State().Users.Meta.Errors.Has("password"))

	m, _ = press(t, m, "esc")
	assert.Equal(t, PageUsers, m.Page())
	assert.Nil(t, f.store.State().Users.EditingFocus)
}

func TestHelpAndBack(t *testing.T) {
	m, _ := loggedIn(t)

	m, _ = press(t, m, "?")
	assert.Equal(t, PageHelp, m.Page())

	m, _ = press(t, m, "esc")
	assert.Equal(t, PageUsers, m.Page())
}

func TestLogout(t *testing.T) {
	m, f := loggedIn(t)

	m, _ = press(t, m, "L")

	assert.Equal(t, PageLogin, m.Page())
	assert.False(t, f.store.State().Session.Authenticated())
	saved, err := f.file.Load()
	require.NoError(t, err)
	assert.False(t, saved.Authenticated())
}

func TestExternalLogoutReturnsToLogin(t *testing.T) {
	m, _ := loggedIn(t)

	next, _ := m.Update(sessionChangedMsg{})
	m = next.(Model)

	assert.Equal(t, PageLogin, m.Page())
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := press(t, m, "ctrl+c")

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestHeaderShowsSession(t *testing.T) {
	m, _ := loggedIn(t)

	view := m.View()
	assert.True(t, strings.Contains(view, mockapi.AdminEmail))
	assert.Contains(t, view, "Admin")
}

func TestViewDividerFollowsWidth(t *testing.T) {
	hasDivider := func(view string, width int) bool {
		for _, line := range strings.Split(view, "\n") {
			if strings.TrimSpace(line) == strings.Repeat("─", width) {
				return true
			}
		}
		return false
	}

	m, _ := newTestModel(t)
	assert.True(t, hasDivider(m.View(), 80))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 20})
	assert.True(t, hasDivider(next.(Model).View(), 30))
}
