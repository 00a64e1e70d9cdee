// Package users holds the user-management slice of the console state: the
// loaded user records, pagination, the edit form and its errors.
//
// State is only ever changed by Reduce, which never mutates its input.
package users

import (
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/validation"
)

// DefaultPageSize is the page length used when none is configured.
const DefaultPageSize = 15

// Roles a user can hold.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Roles lists the valid roles in display order.
var Roles = []string{RoleUser, RoleAdmin}

// Meta tracks async status for the slice.
type Meta struct {
	Loading bool
	Errors  validation.Errors
}

// Form is the in-progress edit buffer.
type Form struct {
	Identity string
	Password string
	Role     string
}

// DefaultForm returns the empty create/edit form.
func DefaultForm() Form {
	return Form{Role: RoleUser}
}

// User is a user record as held in state. It has no password field.
type User struct {
	ID        int64
	Identity  string
	Role      string
	CreatedAt time.Time
}

// FromAPI converts an API record, dropping any password it carries.
func FromAPI(u api.User) User {
	return User{
		ID:        u.ID,
		Identity:  u.Identity,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// State is the users slice.
type State struct {
	Meta         Meta
	Page         int
	PageSize     int
	EditingFocus *int64 // nil means "create new"
	Form         Form
	Entities     []User
}

// InitialState returns the slice as it is at store creation.
func InitialState() State {
	return State{
		Meta:     Meta{Errors: validation.Errors{}},
		Page:     1,
		PageSize: DefaultPageSize,
		Form:     DefaultForm(),
		Entities: []User{},
	}
}

// Find returns the first record with id.
func (s State) Find(id int64) (User, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Entities[i], true
	}
	return User{}, false
}

// Editing reports whether the form targets an existing record.
func (s State) Editing() bool {
	return s.EditingFocus != nil
}

func (s State) indexOf(id int64) int {
	for i, u := range s.Entities {
		if u.ID == id {
			return i
		}
	}
	return -1
}
