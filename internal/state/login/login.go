// Package login holds the login form slice: the credentials being typed,
// whether a login is in flight, and the errors of the last attempt.
package login

import "adminconsole/internal/validation"

// Form is the login edit buffer.
type Form struct {
	Email    string
	Password string
}

// Meta tracks async status for the slice.
type Meta struct {
	Loading bool
	Errors  validation.Errors
}

// State is the login slice.
type State struct {
	Meta Meta
	Form Form
}

// InitialState returns an empty form with no errors.
func InitialState() State {
	return State{Meta: Meta{Errors: validation.Errors{}}}
}

// Action is a message accepted by Reduce.
type Action interface {
	Type() string
	loginAction()
}

// UpdateForm merges the non-nil fields into the form.
type UpdateForm struct {
	Email    *string
	Password *string
}

// ResetForm clears the form and the errors.
type ResetForm struct{}

// SetLoading sets Meta.Loading.
type SetLoading struct{ Loading bool }

// SetErrors replaces Meta.Errors wholesale.
type SetErrors struct{ Errors validation.Errors }

func (UpdateForm) Type() string { return "LOGIN:UPDATE_FORM" }
func (ResetForm) Type() string  { return "LOGIN:RESET_FORM" }
func (SetLoading) Type() string { return "LOGIN:SET_LOADING" }
func (SetErrors) Type() string  { return "LOGIN:SET_ERRORS" }

func (UpdateForm) loginAction() {}
func (ResetForm) loginAction()  {}
func (SetLoading) loginAction() {}
func (SetErrors) loginAction()  {}

// Reduce applies a to s without modifying s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case UpdateForm:
		if a.Email != nil {
			s.Form.Email = *a.Email
		}
		if a.Password != nil {
			s.Form.Password = *a.Password
		}
	case ResetForm:
		s.Form = Form{}
		s.Meta.Errors = validation.Errors{}
	case SetLoading:
		s.Meta.Loading = a.Loading
	case SetErrors:
		s.Meta.Errors = a.Errors.Clone()
	}
	return s
}
