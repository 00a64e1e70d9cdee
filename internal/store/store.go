// Package store is the console's single state container. The state tree is
// only changed by dispatching actions, each of which is applied atomically
// by the slice reducers before any later read can observe it.
package store

import (
	"sync"

	"adminconsole/internal/logging"
	"adminconsole/internal/state/login"
	"adminconsole/internal/state/session"
	"adminconsole/internal/state/users"
)

// State is the root state tree.
type State struct {
	Users   users.State
	Login   login.State
	Session session.State
}

// Action is any slice action. Actions that belong to no slice are ignored.
type Action interface {
	Type() string
}

// Listener is called with the new state after each dispatch. Listeners run
// outside the store lock and may call State or Dispatch. When dispatches race,
// a listener can receive an older snapshot after a newer one; listeners that
// need the latest state should read State instead of trusting the argument.
type Listener func(State)

// Store owns the state tree.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	closed    bool
}

// Option configures the initial state.
type Option func(*State)

// WithPageSize sets the users page length.
func WithPageSize(n int) Option {
	return func(s *State) {
		if n > 0 {
			s.Users.PageSize = n
		}
	}
}

// WithSession starts the store with an existing session.
func WithSession(sess session.State) Option {
	return func(s *State) {
		s.Session = sess
	}
}

// New creates a store holding the initial state.
func New(opts ...Option) *Store {
	st := State{
		Users: users.InitialState(),
		Login: login.InitialState(),
	}
	for _, opt := range opts {
		opt(&st)
	}
	return &Store{
		state:     st,
		listeners: make(map[int]Listener),
	}
}

// Reduce is the root reducer: it routes a to the slice that owns it.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case users.Action:
		s.Users = users.Reduce(s.Users, a)
	case login.Action:
		s.Login = login.Reduce(s.Login, a)
	case session.Action:
		s.Session = session.Reduce(s.Session, a)
	}
	return s
}

// Dispatch applies actions in order, then notifies listeners once with the
// state as of this call. Notification order across concurrent calls is not
// guaranteed.
func (s *Store) Dispatch(actions ...Action) {
	if len(actions) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logging.Get(logging.CategoryStore).Warn("dispatch after close ignored: %s", actions[0].Type())
		return
	}
	for _, a := range actions {
		logging.StoreDebug("dispatch %s", a.Type())
		s.state = Reduce(s.state, a)
	}
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close drops all listeners. Later dispatches are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = make(map[int]Listener)
}

// GetSessionState returns the session slice of st.
func GetSessionState(st State) session.State {
	return st.Session
}
