package ui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adminconsole/internal/sessionfile"
	"adminconsole/internal/state/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finishWithin fails the test if fn does not return before d.
func finishWithin(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("call did not return")
	}
}

func TestWatchSessionDisabledWhenStartFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	file := sessionfile.New(filepath.Join(blocker, "session.yaml"))

	var stop func()
	finishWithin(t, 2*time.Second, func() {
		stop = watchSession(context.Background(), file, func(tea.Msg) {})
	})
	require.NotNil(t, stop)
	finishWithin(t, 2*time.Second, stop)
}

func TestWatchSessionForwardsChanges(t *testing.T) {
	file := sessionfile.New(filepath.Join(t.TempDir(), "session.yaml"))
	msgs := make(chan tea.Msg, 4)

	stop := watchSession(context.Background(), file, func(msg tea.Msg) { msgs <- msg })
	defer stop()

	require.NoError(t, file.Save(session.State{ID: 3, Token: "tok"}))

	select {
	case msg := <-msgs:
		changed, ok := msg.(sessionChangedMsg)
		require.True(t, ok)
		assert.Equal(t, int64(3), changed.session.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no session change forwarded")
	}
}
