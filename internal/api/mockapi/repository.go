package mockapi

import (
	"errors"
	"sort"
	"sync"

	"adminconsole/internal/api"
)

var (
	errNotFound  = errors.New("user not found")
	errDuplicate = errors.New("identity already in use")
	errBadCreds  = errors.New("bad credentials")
)

// Repository stores user records and their password hashes. Identities are
// unique ignoring case.
type Repository interface {
	// Insert assigns u an ID and stores it. Returns errDuplicate on a clash.
	Insert(u api.User, hash []byte) (api.User, error)
	// Update replaces identity and role of id; a nil hash keeps the old one.
	Update(id int64, identity, role string, hash []byte) (api.User, error)
	Delete(id int64) error
	// ByIdentity returns the record and hash, or errNotFound.
	ByIdentity(identity string) (api.User, []byte, error)
	// List returns records ordered by ID.
	List(offset, limit int) ([]api.User, error)
	Count() (int, error)
	Close() error
}

type record struct {
	user api.User
	hash []byte
}

// memoryRepository is the default, process-local Repository.
type memoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]record
	nextID int64
}

// NewMemoryRepository returns an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[int64]record)}
}

func (m *memoryRepository) Insert(u api.User, hash []byte) (api.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupLocked(u.Identity) != 0 {
		return api.User{}, errDuplicate
	}
	m.nextID++
	u.ID = m.nextID
	u.Password = ""
	m.users[u.ID] = record{user: u, hash: hash}
	return u, nil
}

func (m *memoryRepository) Update(id int64, identity, role string, hash []byte) (api.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.users[id]
	if !ok {
		return api.User{}, errNotFound
	}
	if other := m.lookupLocked(identity); other != 0 && other != id {
		return api.User{}, errDuplicate
	}
	rec.user.Identity = identity
	rec.user.Role = role
	if hash != nil {
		rec.hash = hash
	}
	m.users[id] = rec
	return rec.user, nil
}

func (m *memoryRepository) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return errNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryRepository) ByIdentity(identity string) (api.User, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.users[m.lookupLocked(identity)]
	if !ok {
		return api.User{}, nil, errNotFound
	}
	return rec.user, rec.hash, nil
}

func (m *memoryRepository) List(offset, limit int) ([]api.User, error) {
	m.mu.RLock()
	all := make([]api.User, 0, len(m.users))
	for _, r := range m.users {
		all = append(all, r.user)
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return []api.User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (m *memoryRepository) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *memoryRepository) Close() error { return nil }

func (m *memoryRepository) lookupLocked(identity string) int64 {
	for id, r := range m.users {
		if identityKey(r.user.Identity) == identityKey(identity) {
			return id
		}
	}
	return 0
}
