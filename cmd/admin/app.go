package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/config"
	"adminconsole/internal/sessionfile"
	"adminconsole/internal/store"
	"adminconsole/internal/validation"
	"adminconsole/internal/workflow"

	"go.uber.org/zap"
)

// errFailed marks a command whose workflow did not succeed. The details have
// already been printed.
var errFailed = errors.New("command failed")

// app is the store, runner and session file shared by every command.
type app struct {
	store    *store.Store
	runner   *workflow.Runner
	sessions *sessionfile.File
}

// newApp builds the app from c, restoring any saved session that has not
// expired.
func newApp(c *config.Config, nav workflow.Navigator) (*app, error) {
	client, err := api.NewHTTPClient(c.API.BaseURL, api.WithTimeout(c.GetAPITimeout()))
	if err != nil {
		return nil, err
	}

	file := sessionfile.New(c.Session.File)
	opts := []store.Option{store.WithPageSize(c.Users.PageSize)}
	sess, err := file.Load()
	switch {
	case err != nil:
		logger.Warn("Ignoring unreadable session file", zap.String("path", file.Path()), zap.Error(err))
	case sess.Expired(time.Now()):
		logger.Debug("Saved session has expired", zap.Time("expires_at", sess.ExpiresAt))
	case sess.Authenticated():
		opts = append(opts, store.WithSession(sess))
	}

	st := store.New(opts...)
	runner := workflow.New(workflow.Env{Store: st, API: client, Nav: nav, Sessions: file})
	return &app{store: st, runner: runner, sessions: file}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// errNotLoggedIn is returned by commands that need a saved session.
var errNotLoggedIn = errors.New("not logged in (run: admin login --email <email>)")

// requireSession fails fast when there is no usable saved session.
func (a *app) requireSession() error {
	if !a.store.State().Session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// cliNavigator logs navigation; the CLI has no pages.
type cliNavigator struct{}

func (cliNavigator) Push(path string) {
	logger.Debug("Navigate", zap.String("path", path))
}

// commandContext returns a context cancelled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// report prints errs and converts a failed outcome into errFailed.
func report(w io.Writer, out workflow.Outcome, errs validation.Errors) error {
	if out == workflow.OutcomeOK {
		return nil
	}
	for _, f := range errs.Fields() {
		for _, msg := range errs[f] {
			fmt.Fprintf(w, "%s: %s\n", f, msg)
		}
	}
	return fmt.Errorf("%w (%s)", errFailed, out)
}
