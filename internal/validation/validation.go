// Package validation checks raw form input against declared rules.
//
// Rules are independent: every rule that is applied to a Validation is
// evaluated, so a single field can report several violations at once.
//
//	v := validation.New(form.Password)
//	v.NonEmpty().MinLength(8)
//	if !v.IsValid() {
//		errs.Set("password", v.Errors())
//	}
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// GeneralKey is the errors key used for messages that are not tied to a field.
const GeneralKey = "general"

// Rule messages shown to the user.
const (
	MsgEmail    = "Must be a valid email address."
	MsgNonEmpty = "Cannot be empty."
)

// Validation accumulates rule violations for one raw value.
type Validation struct {
	value  string
	errors []string
}

// New creates a Validation for value.
func New(value string) *Validation {
	return &Validation{value: value}
}

// Email requires value to be a bare email address with a dotted domain.
func (v *Validation) Email() *Validation {
	if !isEmail(v.value) {
		v.errors = append(v.errors, MsgEmail)
	}
	return v
}

// NonEmpty requires value to contain something other than whitespace.
func (v *Validation) NonEmpty() *Validation {
	if strings.TrimSpace(v.value) == "" {
		v.errors = append(v.errors, MsgNonEmpty)
	}
	return v
}

// MinLength requires at least n characters.
func (v *Validation) MinLength(n int) *Validation {
	if utf8.RuneCountInString(v.value) < n {
		v.errors = append(v.errors, fmt.Sprintf("Must be at least %d characters.", n))
	}
	return v
}

// OneOf requires value to equal one of options.
func (v *Validation) OneOf(options ...string) *Validation {
	for _, o := range options {
		if v.value == o {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Sprintf("Must be one of: %s.", strings.Join(options, ", ")))
	return v
}

// Errors returns the violated-rule messages in the order the rules ran.
func (v *Validation) Errors() []string {
	out := make([]string, len(v.errors))
	copy(out, v.errors)
	return out
}

// IsValid reports whether no rule was violated.
func (v *Validation) IsValid() bool {
	return len(v.errors) == 0
}

func isEmail(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
