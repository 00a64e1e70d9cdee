// Package workflow runs the console's asynchronous operations: validate
// input, call the remote API, and dispatch the outcome into the store.
//
// Workflows never return validation, domain or transport failures as Go
// errors. Those land in the relevant slice's meta errors and the caller gets
// an Outcome.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"adminconsole/internal/api"
	"adminconsole/internal/logging"
	"adminconsole/internal/state/login"
	"adminconsole/internal/state/session"
	"adminconsole/internal/store"
	"adminconsole/internal/validation"

	"golang.org/x/sync/singleflight"
)

// User-facing messages.
const (
	MsgConnection         = "Could not connect to server. Please try again later."
	MsgInvalidCredentials = "Invalid email and/or password."
	MsgSessionExpired     = "Your session has expired. Please log in again."
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "login"

// ManagePath is the session-scoped users page.
func ManagePath(sessionID int64) string {
	return fmt.Sprintf("users/%d/manage", sessionID)
}

// Outcome reports how a workflow ended.
type Outcome int

const (
	// OutcomeOK means the operation completed.
	OutcomeOK Outcome = iota
	// OutcomeInvalid means local validation failed; no request was sent.
	OutcomeInvalid
	// OutcomeFailed means the request failed; see the slice's meta errors.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Navigator changes the visible route.
type Navigator interface {
	Push(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Push calls f(path).
func (f NavigatorFunc) Push(path string) { f(path) }

// SessionSaver persists the session between runs.
type SessionSaver interface {
	Save(session.State) error
	Remove() error
}

// Env is what workflows run against.
type Env struct {
	Store    *store.Store
	API      api.Client
	Nav      Navigator
	Sessions SessionSaver // optional
}

// Runner executes workflows. Concurrent calls of the same workflow with the
// same key share one execution and one result.
type Runner struct {
	env   Env
	group singleflight.Group
}

// New creates a Runner. Store and API are required.
func New(env Env) *Runner {
	if env.Store == nil || env.API == nil {
		panic("workflow: Env.Store and Env.API are required")
	}
	if env.Nav == nil {
		env.Nav = NavigatorFunc(func(string) {})
	}
	return &Runner{env: env}
}

// once runs fn under key, joining an in-flight run if there is one.
func (r *Runner) once(key string, fn func() Outcome) Outcome {
	v, _, shared := r.group.Do(key, func() (any, error) {
		return fn(), nil
	})
	if shared {
		logging.WorkflowDebug("%s: joined in-flight run", key)
	}
	return v.(Outcome)
}

func (r *Runner) dispatch(actions ...store.Action) {
	r.env.Store.Dispatch(actions...)
}

func (r *Runner) session() session.State {
	return store.GetSessionState(r.env.Store.State())
}

// requestErrors maps a failed request to user-facing errors. Code 300 is only
// special-cased for login.
func requestErrors(err error, forLogin bool) validation.Errors {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return validation.General(MsgConnection)
	}
	if forLogin && apiErr.Code == api.CodeInvalidCredentials {
		return validation.General(MsgInvalidCredentials)
	}
	return validation.General(apiErr.Message)
}

func isUnauthorized(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// expire drops the session and sends the user back to the login page.
func (r *Runner) expire() {
	logging.Get(logging.CategoryWorkflow).Warn("session rejected by server, logging out")
	r.dispatch(
		session.Clear{},
		login.ResetForm{},
		login.SetErrors{Errors: validation.General(MsgSessionExpired)},
	)
	r.forget()
	r.env.Nav.Push(LoginPath)
}

func (r *Runner) persist(s session.State) {
	if r.env.Sessions == nil {
		return
	}
	if err := r.env.Sessions.Save(s); err != nil {
		logging.Get(logging.CategorySession).Error("persist session: %v", err)
	}
}

func (r *Runner) forget() {
	if r.env.Sessions == nil {
		return
	}
	if err := r.env.Sessions.Remove(); err != nil {
		logging.Get(logging.CategorySession).Error("remove session: %v", err)
	}
}

// withLoading sets loading through on, runs call, and clears loading on every
// exit path including panics and cancellation.
func (r *Runner) withLoading(on func(bool) store.Action, call func() error) error {
	r.dispatch(on(true))
	defer r.dispatch(on(false))
	return call()
}

// checkCtx stops a workflow whose context ended before the request was sent.
func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("workflow cancelled: %w", err)
	}
	return nil
}
