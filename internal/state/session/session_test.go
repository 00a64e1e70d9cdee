package session

import (
	"testing"
	"time"

	"adminconsole/internal/api"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestFromResultReadsClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{
		"sub":   "42",
		"email": "admin@example.com",
		"role":  "Admin",
		"exp":   exp.Unix(),
	})

	s := FromResult(api.LoginResult{Token: tok})

	assert.Equal(t, int64(42), s.ID)
	assert.Equal(t, "admin@example.com", s.Email)
	assert.Equal(t, "Admin", s.Role)
	assert.True(t, exp.Equal(s.ExpiresAt))
	assert.True(t, s.Authenticated())
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestFromResultPrefersResultID(t *testing.T) {
	tok := signed(t, jwt.MapClaims{"user_id": 9, "sub": "10"})

	assert.Equal(t, int64(7), FromResult(api.LoginResult{ID: 7, Token: tok}).ID)
	assert.Equal(t, int64(9), FromResult(api.LoginResult{Token: tok}).ID)
}

func TestFromResultOpaqueToken(t *testing.T) {
	s := FromResult(api.LoginResult{ID: 3, Token: "not-a-jwt"})

	assert.Equal(t, State{ID: 3, Token: "not-a-jwt"}, s)
	assert.False(t, s.Expired(time.Now()))
}

func TestReduce(t *testing.T) {
	s := Reduce(State{}, SetToken{Session: State{ID: 1, Token: "t"}})
	assert.True(t, s.Authenticated())

	s = Reduce(s, Clear{})
	assert.Equal(t, State{}, s)
	assert.False(t, s.Authenticated())
}
