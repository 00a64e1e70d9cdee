package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	cases := map[string]bool{
		"admin@example.com":         true,
		"a.b+tag@sub.example.org":   true,
		"":                          false,
		"admin":                     false,
		"admin@":                    false,
		"@example.com":              false,
		"admin@localhost":           false,
		"admin@example.":            false,
		" admin@example.com":        false,
		"Admin <admin@example.com>": false,
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			v := New(input).Email()
			assert.Equal(t, want, v.IsValid())
			if !want {
				assert.Equal(t, []string{MsgEmail}, v.Errors())
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	assert.True(t, New("x").NonEmpty().IsValid())
	assert.False(t, New("").NonEmpty().IsValid())
	assert.Equal(t, []string{MsgNonEmpty}, New("   ").NonEmpty().Errors())
}

func TestRulesDoNotShortCircuit(t *testing.T) {
	v := New("").NonEmpty().Email().MinLength(3)

	assert.False(t, v.IsValid())
	assert.Equal(t, []string{MsgNonEmpty, MsgEmail, "Must be at least 3 characters."}, v.Errors())
}

func TestOneOf(t *testing.T) {
	assert.True(t, New("Admin").OneOf("User", "Admin").IsValid())
	assert.Equal(t, []string{"Must be one of: User, Admin."}, New("root").OneOf("User", "Admin").Errors())
}

func TestErrorsReturnsCopy(t *testing.T) {
	v := New("").NonEmpty()
	errs := v.Errors()
	errs[0] = "mutated"

	assert.Equal(t, []string{MsgNonEmpty}, v.Errors())
}

func TestCollect(t *testing.T) {
	errs, ok := Collect(map[string]*Validation{
		"email":    New("nope").Email(),
		"password": New("secret").NonEmpty(),
	})

	assert.False(t, ok)
	assert.Equal(t, []string{MsgEmail}, errs["email"])
	assert.Empty(t, errs["password"])
	assert.True(t, errs.Has("email"))
	assert.False(t, errs.Has("password"))
	assert.Equal(t, []string{"email"}, errs.Fields())
}

func TestErrorsHelpers(t *testing.T) {
	var nilErrs Errors
	assert.True(t, nilErrs.Empty())
	assert.Equal(t, Errors{}, nilErrs.Clone())

	g := General("boom")
	assert.False(t, g.Empty())
	c := g.Clone()
	c[GeneralKey][0] = "changed"
	assert.Equal(t, "boom", g[GeneralKey][0])
}
