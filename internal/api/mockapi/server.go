// Package mockapi implements the user-management API over an in-memory or
// SQLite user table. It backs the client and workflow tests and the
// `admin mock-api` command.
package mockapi

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// Seeded administrator.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "password123"
)

// Server serves the API over a Repository and issues tokens.
type Server struct {
	repo    Repository
	tokens  *tokens
	latency time.Duration
	cost    int
	now     func() time.Time

	logins atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.tokens.secret = secret }
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokens.ttl = d }
}

// WithLatency delays every response, honouring request cancellation.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithBcryptCost sets the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

// WithRepository stores users in repo instead of memory.
func WithRepository(repo Repository) Option {
	return func(s *Server) { s.repo = repo }
}

// WithClock replaces the time source used for tokens and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a server and seeds the admin account unless the repository
// already holds it. It panics if seeding fails.
func New(opts ...Option) *Server {
	s := &Server{
		tokens: &tokens{secret: []byte("mock-api-secret"), ttl: time.Hour},
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.repo == nil {
		s.repo = NewMemoryRepository()
	}
	s.tokens.now = s.now
	if _, err := s.Seed(AdminEmail, AdminPassword, "Admin"); err != nil && !errors.Is(err, errDuplicate) {
		panic("mockapi: seeding admin: " + err.Error())
	}
	return s
}

// Seed adds a user directly, bypassing authentication.
func (s *Server) Seed(identity, password, role string) (api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return api.User{}, err
	}
	return s.repo.Insert(s.newUser(identity, role), hash)
}

// Logins returns the number of /login requests received.
func (s *Server) Logins() int64 {
	return s.logins.Load()
}

// Users returns all records ordered by ID, without passwords.
func (s *Server) Users() []api.User {
	all, err := s.repo.List(0, 0)
	if err != nil {
		logging.Get(logging.CategoryMock).Error("listing users: %v", err)
		return nil
	}
	return all
}

// Close releases the repository.
func (s *Server) Close() error {
	return s.repo.Close()
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	if s.latency > 0 {
		r.Use(delay(s.latency))
	}

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(auth chi.Router) {
			auth.Use(s.authn)
			auth.Get("/users", s.handleList)
			auth.Post("/users", s.handleCreate)
			auth.Put("/users/{id}", s.handleUpdate)
			auth.Delete("/users/{id}", s.handleDelete)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, api.CodeNotFound, "no such route")
	})
	return r
}

func (s *Server) newUser(identity, role string) api.User {
	return api.User{Identity: identity, Role: role, CreatedAt: s.now().UTC().Truncate(time.Second)}
}

func (s *Server) checkPassword(email, password string) (api.User, error) {
	u, hash, err := s.repo.ByIdentity(email)
	if err != nil {
		return api.User{}, errBadCreds
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return api.User{}, errBadCreds
	}
	return u, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Mock("%s %s -> %d in %v (request_id=%s)",
			r.Method, r.URL.Path, ww.Status(), time.Since(start), r.Header.Get("X-Request-ID"))
	})
}

func delay(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-r.Context().Done():
				return
			case <-t.C:
			}
			next.ServeHTTP(w, r)
		})
	}
}
