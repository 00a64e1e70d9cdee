package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"adminconsole/internal/api"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "adminconsole-mock"

type tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (t *tokens) sign(u api.User) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatInt(u.ID, 10),
		"user_id": u.ID,
		"email":   u.Identity,
		"role":    u.Role,
		"iss":     issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(t.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *tokens) parse(raw string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *Server) authn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing bearer token")
			return
		}
		if _, err := s.tokens.parse(strings.TrimPrefix(h, "Bearer ")); err != nil {
			writeError(w, http.StatusUnauthorized, api.CodeUnauthorized, "session expired or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}
