package users

import (
	"adminconsole/internal/api"
	"adminconsole/internal/validation"
)

// Action is a message accepted by Reduce. The set is closed: only the types
// in this file implement it.
type Action interface {
	// Type is the tag used in logs.
	Type() string
	usersAction()
}

// Add appends records, stripping passwords and dropping duplicate IDs.
type Add struct{ Users []api.User }

// Update replaces the record with ID. No-op if absent.
type Update struct {
	ID   int64
	User api.User
}

// Delete removes the record with ID. No-op if absent.
type Delete struct{ ID int64 }

// SetEditingFocus selects the record being edited; nil selects "create new".
type SetEditingFocus struct{ ID *int64 }

// SetPage moves the pagination cursor. Not bounds checked.
type SetPage struct{ Page int }

// ResetForm restores the default form and clears errors.
type ResetForm struct{}

// UpdateForm merges the non-nil fields of Patch into the form.
type UpdateForm struct{ Patch FormPatch }

// SetLoading sets Meta.Loading.
type SetLoading struct{ Loading bool }

// SetErrors replaces Meta.Errors wholesale.
type SetErrors struct{ Errors validation.Errors }

// FormPatch is a partial form. Nil fields are left untouched.
type FormPatch struct {
	Identity *string
	Password *string
	Role     *string
}

// Field returns a pointer to v for building a FormPatch.
func Field(v string) *string { return &v }

func (Add) Type() string             { return "USERS:ADD" }
func (Update) Type() string          { return "USERS:UPDATE" }
func (Delete) Type() string          { return "USERS:DELETE" }
func (SetEditingFocus) Type() string { return "USERS:SET_EDITING_FOCUS" }
func (SetPage) Type() string         { return "USERS:SET_PAGE" }
func (ResetForm) Type() string       { return "USERS:RESET_FORM" }
func (UpdateForm) Type() string      { return "USERS:UPDATE_FORM" }
func (SetLoading) Type() string      { return "USERS:SET_LOADING" }
func (SetErrors) Type() string       { return "USERS:SET_ERRORS" }

func (Add) usersAction()             {}
func (Update) usersAction()          {}
func (Delete) usersAction()          {}
func (SetEditingFocus) usersAction() {}
func (SetPage) usersAction()         {}
func (ResetForm) usersAction()       {}
func (UpdateForm) usersAction()      {}
func (SetLoading) usersAction()      {}
func (SetErrors) usersAction()       {}
