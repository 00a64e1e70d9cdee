// Package api is the client side of the remote user-management API.
//
// Every endpoint answers with an envelope holding either a result or a
// structured error:
//
//	{"result": ...}
//	{"error": {"code": 300, "message": "..."}}
//
// Envelope errors surface as *Error. Anything else that goes wrong
// (connection refused, timeouts, unreadable bodies) is a transport error and
// is returned wrapped, never as *Error.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Error codes the console knows about. Other codes are passed through.
const (
	CodeInvalidCredentials = 300
	CodeBadRequest         = 400
	CodeUnauthorized       = 401
	CodeForbidden          = 403
	CodeNotFound           = 404
	CodeConflict           = 409
	CodeValidation         = 422
)

// Error is a structured error returned by the remote service.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

// Unauthorized reports whether the error means the session is no longer valid.
func (e *Error) Unauthorized() bool {
	return e.Code == CodeUnauthorized || e.Code == CodeForbidden
}

// Envelope is the wire shape of every response.
type Envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	ID    int64  `json:"id,omitempty"`
	Token string `json:"token"`
}

// User is a user record as the API sends it. Password is only ever set on
// outgoing writes.
type User struct {
	ID        int64     `json:"id,omitempty"`
	Identity  string    `json:"identity"`
	Password  string    `json:"password,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Client is the remote API as the workflows see it.
type Client interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	ListUsers(ctx context.Context, token string, page, pageSize int) ([]User, error)
	CreateUser(ctx context.Context, token string, u User) (User, error)
	UpdateUser(ctx context.Context, token string, id int64, u User) (User, error)
	DeleteUser(ctx context.Context, token string, id int64) error
}
