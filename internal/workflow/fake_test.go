package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"adminconsole/internal/api"
	"adminconsole/internal/state/session"
)

var errNetwork = errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")

// fakeAPI is a scripted api.Client.
type fakeAPI struct {
	loginCalls atomic.Int32
	listCalls  atomic.Int32
	writeCalls atomic.Int32

	// gate, when set, blocks Login until closed.
	gate chan struct{}
	// started receives once per Login entry.
	started chan struct{}

	loginRes api.LoginResult
	loginErr error

	users   []api.User
	listErr error

	writeErr error
	lastUser api.User
	mu       sync.Mutex
}

func (f *fakeAPI) Login(ctx context.Context, creds api.Credentials) (api.LoginResult, error) {
	f.loginCalls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return api.LoginResult{}, ctx.Err()
		}
	}
	return f.loginRes, f.loginErr
}

func (f *fakeAPI) ListUsers(ctx context.Context, token string, page, pageSize int) ([]api.User, error) {
	f.listCalls.Add(1)
	return f.users, f.listErr
}

func (f *fakeAPI) CreateUser(ctx context.Context, token string, u api.User) (api.User, error) {
	f.writeCalls.Add(1)
	f.mu.Lock()
	f.lastUser = u
	f.mu.Unlock()
	if f.writeErr != nil {
		return api.User{}, f.writeErr
	}
	u.ID = 100
	u.Password = ""
	return u, nil
}

func (f *fakeAPI) UpdateUser(ctx context.Context, token string, id int64, u api.User) (api.User, error) {
	f.writeCalls.Add(1)
	f.mu.Lock()
	f.lastUser = u
	f.mu.Unlock()
	if f.writeErr != nil {
		return api.User{}, f.writeErr
	}
	u.Password = ""
	return u, nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, token string, id int64) error {
	f.writeCalls.Add(1)
	return f.writeErr
}

// recorder collects navigation pushes.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) Push(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// memSessions is an in-memory SessionSaver.
type memSessions struct {
	mu      sync.Mutex
	saved   session.State
	removed int
	saveErr error
}

func (m *memSessions) Save(s session.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	return nil
}

func (m *memSessions) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = session.State{}
	m.removed++
	return nil
}
