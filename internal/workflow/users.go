package workflow

import (
	"context"
	"fmt"

	"adminconsole/internal/api"
	"adminconsole/internal/logging"
	"adminconsole/internal/state/users"
	"adminconsole/internal/store"
	"adminconsole/internal/validation"
)

// MinPasswordLength applies to new passwords.
const MinPasswordLength = 8

func usersLoading(v bool) store.Action { return users.SetLoading{Loading: v} }

// authed runs call with the session token, loading set on the users slice.
// Failures are dispatched as users errors; a rejected session logs out.
func (r *Runner) authed(ctx context.Context, name string, call func(token string) error) Outcome {
	sess := r.session()
	if !sess.Authenticated() {
		r.expire()
		return OutcomeFailed
	}

	timer := logging.StartTimer(logging.CategoryWorkflow, name)
	err := r.withLoading(usersLoading, func() error {
		if err := checkCtx(ctx); err != nil {
			return err
		}
		return call(sess.Token)
	})
	timer.Stop()

	if err == nil {
		return OutcomeOK
	}
	logging.Workflow("%s failed: %v", name, err)
	if isUnauthorized(err) {
		r.expire()
		return OutcomeFailed
	}
	r.dispatch(users.SetErrors{Errors: requestErrors(err, false)})
	return OutcomeFailed
}

// LoadUsers fetches page and merges it into the loaded records.
func (r *Runner) LoadUsers(ctx context.Context, page int) Outcome {
	if page < 1 {
		page = 1
	}
	return r.once(fmt.Sprintf("users:load:%d", page), func() Outcome {
		r.dispatch(users.SetPage{Page: page})
		size := r.env.Store.State().Users.PageSize

		var list []api.User
		out := r.authed(ctx, "load users", func(token string) error {
			var err error
			list, err = r.env.API.ListUsers(ctx, token, page, size)
			return err
		})
		if out == OutcomeOK {
			r.dispatch(users.Add{Users: list})
		}
		return out
	})
}

// StartCreate points the form at a new record.
func (r *Runner) StartCreate() {
	r.dispatch(users.SetEditingFocus{ID: nil}, users.ResetForm{})
}

// StartEdit points the form at record id and fills it from the loaded copy.
// It reports false if id is not loaded.
func (r *Runner) StartEdit(id int64) bool {
	u, ok := r.env.Store.State().Users.Find(id)
	if !ok {
		return false
	}
	r.dispatch(
		users.SetEditingFocus{ID: &id},
		users.ResetForm{},
		users.UpdateForm{Patch: users.FormPatch{Identity: users.Field(u.Identity), Role: users.Field(u.Role)}},
	)
	return true
}

// SubmitUser saves the form: an update when a record is focused, else a create.
func (r *Runner) SubmitUser(ctx context.Context) Outcome {
	if id := r.env.Store.State().Users.EditingFocus; id != nil {
		return r.UpdateUser(ctx, *id)
	}
	return r.CreateUser(ctx)
}

// CreateUser creates a record from the form.
func (r *Runner) CreateUser(ctx context.Context) Outcome {
	return r.once("users:create", func() Outcome {
		form := r.env.Store.State().Users.Form
		errs, ok := validation.Collect(map[string]*validation.Validation{
			"identity": validation.New(form.Identity).Email(),
			"password": validation.New(form.Password).NonEmpty().MinLength(MinPasswordLength),
			"role":     validation.New(form.Role).OneOf(users.Roles...),
		})
		if !ok {
			r.dispatch(users.SetErrors{Errors: errs})
			return OutcomeInvalid
		}

		var created api.User
		out := r.authed(ctx, "create user", func(token string) error {
			var err error
			created, err = r.env.API.CreateUser(ctx, token, api.User{
				Identity: form.Identity,
				Password: form.Password,
				Role:     form.Role,
			})
			return err
		})
		if out != OutcomeOK {
			return out
		}

		r.dispatch(users.Add{Users: []api.User{created}}, users.ResetForm{})
		logging.Workflow("created user %d", created.ID)
		r.env.Nav.Push(ManagePath(r.session().ID))
		return OutcomeOK
	})
}

// UpdateUser saves the form over record id. An empty password keeps the
// current one.
func (r *Runner) UpdateUser(ctx context.Context, id int64) Outcome {
	return r.once(fmt.Sprintf("users:update:%d", id), func() Outcome {
		form := r.env.Store.State().Users.Form
		password := validation.New(form.Password)
		if form.Password != "" {
			password.MinLength(MinPasswordLength)
		}
		errs, ok := validation.Collect(map[string]*validation.Validation{
			"identity": validation.New(form.Identity).Email(),
			"password": password,
			"role":     validation.New(form.Role).OneOf(users.Roles...),
		})
		if !ok {
			r.dispatch(users.SetErrors{Errors: errs})
			return OutcomeInvalid
		}

		var updated api.User
		out := r.authed(ctx, "update user", func(token string) error {
			var err error
			updated, err = r.env.API.UpdateUser(ctx, token, id, api.User{
				ID:       id,
				Identity: form.Identity,
				Password: form.Password,
				Role:     form.Role,
			})
			return err
		})
		if out != OutcomeOK {
			return out
		}

		r.dispatch(
			users.Update{ID: id, User: updated},
			users.ResetForm{},
			users.SetEditingFocus{ID: nil},
		)
		logging.Workflow("updated user %d", id)
		r.env.Nav.Push(ManagePath(r.session().ID))
		return OutcomeOK
	})
}

// DeleteUser removes record id remotely and locally.
func (r *Runner) DeleteUser(ctx context.Context, id int64) Outcome {
	return r.once(fmt.Sprintf("users:delete:%d", id), func() Outcome {
		out := r.authed(ctx, "delete user", func(token string) error {
			return r.env.API.DeleteUser(ctx, token, id)
		})
		if out != OutcomeOK {
			return out
		}

		actions := []store.Action{users.Delete{ID: id}}
		if focus := r.env.Store.State().Users.EditingFocus; focus != nil && *focus == id {
			actions = append(actions, users.SetEditingFocus{ID: nil}, users.ResetForm{})
		}
		r.dispatch(actions...)
		logging.Workflow("deleted user %d", id)
		return OutcomeOK
	})
}
