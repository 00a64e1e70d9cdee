// Package session holds the authenticated session slice.
package session

import (
	"strconv"
	"time"

	"adminconsole/internal/api"

	"github.com/golang-jwt/jwt/v5"
)

// State is the session slice. The zero value means "not logged in".
type State struct {
	ID        int64     `yaml:"id"`
	Token     string    `yaml:"token"`
	Email     string    `yaml:"email,omitempty"`
	Role      string    `yaml:"role,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// Authenticated reports whether a token is held.
func (s State) Authenticated() bool {
	return s.Token != ""
}

// Expired reports whether the token has a known expiry before now.
func (s State) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// FromResult builds a session from a login result. Claims carried by a JWT
// token fill in what the result leaves out; the signature is not checked
// because the console never holds the signing key.
func FromResult(res api.LoginResult) State {
	s := State{ID: res.ID, Token: res.Token}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.Token, claims); err != nil {
		return s
	}

	if s.ID == 0 {
		s.ID = idFromClaims(claims)
	}
	if v, ok := claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		s.Role = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s
}

func idFromClaims(claims jwt.MapClaims) int64 {
	if v, ok := claims["user_id"].(float64); ok {
		return int64(v)
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil {
			return id
		}
	}
	return 0
}

// Action is a message accepted by Reduce.
type Action interface {
	Type() string
	sessionAction()
}

// SetToken installs a session.
type SetToken struct{ Session State }

// Clear drops the session.
type Clear struct{}

func (SetToken) Type() string { return "SESSION:SET_TOKEN" }
func (Clear) Type() string    { return "SESSION:CLEAR" }

func (SetToken) sessionAction() {}
func (Clear) sessionAction()    {}

// Reduce applies a to s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetToken:
		return a.Session
	case Clear:
		return State{}
	}
	return s
}
