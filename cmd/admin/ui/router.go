package ui

import (
	"fmt"
	"strings"
	"sync"
)

// Page is a console screen.
type Page int

const (
	PageLogin Page = iota
	PageUsers
	PageEdit
	PageHelp
)

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageUsers:
		return "users"
	case PageEdit:
		return "edit"
	case PageHelp:
		return "help"
	default:
		return fmt.Sprintf("Page(%d)", int(p))
	}
}

// HelpPath is the route of the help page.
const HelpPath = "help"

// EditPath is the session-scoped edit form route.
func EditPath(sessionID int64) string {
	return fmt.Sprintf("users/%d/edit", sessionID)
}

// Resolve maps a route to its page. Unknown routes go to login.
func Resolve(path string) Page {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == HelpPath:
		return PageHelp
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "manage":
		return PageUsers
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "edit":
		return PageEdit
	default:
		return PageLogin
	}
}

// Router tracks the current route. It is the workflows' Navigator, so Push
// may be called from any goroutine.
type Router struct {
	mu      sync.Mutex
	path    string
	history []string
}

// NewRouter starts at path.
func NewRouter(path string) *Router {
	return &Router{path: path}
}

// Push moves to path.
func (r *Router) Push(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path == r.path {
		return
	}
	r.history = append(r.history, r.path)
	r.path = path
}

// Back returns to the previous route, if any.
func (r *Router) Back() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.history); n > 0 {
		r.path = r.history[n-1]
		r.history = r.history[:n-1]
	}
	return r.path
}

// Path returns the current route.
func (r *Router) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Page returns the current page.
func (r *Router) Page() Page {
	return Resolve(r.Path())
}
