package workflow

import (
	"context"
	"strings"
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/logging"
	"adminconsole/internal/state/login"
	"adminconsole/internal/state/session"
	"adminconsole/internal/store"
	"adminconsole/internal/validation"
)

func loginLoading(v bool) store.Action { return login.SetLoading{Loading: v} }

// Login authenticates with creds. A second Login for the same email while
// one is in flight joins it and returns its outcome, even if the password
// differs; a different email starts its own request.
func (r *Runner) Login(ctx context.Context, creds api.Credentials) Outcome {
	key := "login:" + strings.ToLower(strings.TrimSpace(creds.Email))
	return r.once(key, func() Outcome {
		return r.login(ctx, creds)
	})
}

func (r *Runner) login(ctx context.Context, creds api.Credentials) Outcome {
	errs, ok := validation.Collect(map[string]*validation.Validation{
		"email":    validation.New(creds.Email).Email(),
		"password": validation.New(creds.Password).NonEmpty(),
	})
	if !ok {
		logging.WorkflowDebug("login: validation failed for %v", errs.Fields())
		r.dispatch(login.SetErrors{Errors: errs})
		return OutcomeInvalid
	}

	var res api.LoginResult
	err := r.withLoading(loginLoading, func() error {
		if err := checkCtx(ctx); err != nil {
			return err
		}
		var err error
		res, err = r.env.API.Login(ctx, creds)
		return err
	})
	if err != nil {
		logging.Workflow("login failed: %v", err)
		r.dispatch(login.SetErrors{Errors: requestErrors(err, true)})
		return OutcomeFailed
	}

	sess := session.FromResult(res)
	if sess.Email == "" {
		sess.Email = creds.Email
	}
	r.dispatch(login.ResetForm{}, session.SetToken{Session: sess})
	r.persist(sess)

	id := r.session().ID
	logging.Workflow("login ok: user %d", id)
	r.env.Nav.Push(ManagePath(id))
	return OutcomeOK
}

// Logout clears the session locally and on disk.
func (r *Runner) Logout() {
	r.dispatch(session.Clear{}, login.ResetForm{})
	r.forget()
	logging.Workflow("logged out")
	r.env.Nav.Push(LoginPath)
}

// Restore adopts a session loaded from disk or pushed by the file watcher.
// An unauthenticated or expired session logs the console out.
func (r *Runner) Restore(s session.State, now func() time.Time) {
	if !s.Authenticated() || s.Expired(now()) {
		if r.session().Authenticated() {
			r.dispatch(session.Clear{})
			r.env.Nav.Push(LoginPath)
		}
		return
	}
	if cur := r.session(); cur.Token == s.Token && cur.ID == s.ID {
		return
	}
	r.dispatch(session.SetToken{Session: s})
	r.env.Nav.Push(ManagePath(s.ID))
}
