package mockapi

import (
	"path/filepath"
	"testing"
	"time"

	"adminconsole/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var repoFactories = map[string]func(t *testing.T) Repository{
	"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
	"sqlite": func(t *testing.T) Repository {
		repo, err := OpenSQLite(filepath.Join(t.TempDir(), "users.db"))
		require.NoError(t, err)
		return repo
	},
}

func newUser(identity, role string) api.User {
	return api.User{Identity: identity, Role: role, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestRepositoryContract(t *testing.T) {
	for name, open := range repoFactories {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			t.Cleanup(func() { _ = repo.Close() })

			a, err := repo.Insert(newUser("a@example.com", "Admin"), []byte("hash-a"))
			require.NoError(t, err)
			b, err := repo.Insert(newUser("b@example.com", "User"), []byte("hash-b"))
			require.NoError(t, err)
			assert.Equal(t, int64(1), a.ID)
			assert.Equal(t, int64(2), b.ID)
			assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), b.CreatedAt)

			_, err = repo.Insert(newUser("A@Example.com", "User"), []byte("x"))
			assert.ErrorIs(t, err, errDuplicate)

			got, hash, err := repo.ByIdentity("B@EXAMPLE.COM")
			require.NoError(t, err)
			assert.Equal(t, b.ID, got.ID)
			assert.Equal(t, []byte("hash-b"), hash)

			_, _, err = repo.ByIdentity("nobody@example.com")
			assert.ErrorIs(t, err, errNotFound)

			updated, err := repo.Update(b.ID, "bee@example.com", "Admin", nil)
			require.NoError(t, err)
			assert.Equal(t, "bee@example.com", updated.Identity)
			assert.Equal(t, "Admin", updated.Role)
			_, hash, err = repo.ByIdentity("bee@example.com")
			require.NoError(t, err)
			assert.Equal(t, []byte("hash-b"), hash, "nil hash keeps the old password")

			_, err = repo.Update(b.ID, "a@example.com", "User", nil)
			assert.ErrorIs(t, err, errDuplicate)
			_, err = repo.Update(99, "z@example.com", "User", nil)
			assert.ErrorIs(t, err, errNotFound)

			list, err := repo.List(1, 5)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, b.ID, list[0].ID)
			assert.Empty(t, list[0].Password)

			past, err := repo.List(10, 5)
			require.NoError(t, err)
			assert.NotNil(t, past)
			assert.Empty(t, past)

			require.NoError(t, repo.Delete(a.ID))
			assert.ErrorIs(t, repo.Delete(a.ID), errNotFound)
			n, err := repo.Count()
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestSQLiteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.db")

	repo, err := OpenSQLite(path)
	require.NoError(t, err)
	s := New(WithBcryptCost(bcrypt.MinCost), WithRepository(repo))
	_, err = s.Seed("carol@example.com", "password1", "User")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	repo, err = OpenSQLite(path)
	require.NoError(t, err)
	s = New(WithBcryptCost(bcrypt.MinCost), WithRepository(repo))
	t.Cleanup(func() { _ = s.Close() })

	all := s.Users()
	require.Len(t, all, 2, "admin must not be seeded twice")
	assert.Equal(t, AdminEmail, all[0].Identity)
	assert.Equal(t, "carol@example.com", all[1].Identity)

	_, err = s.checkPassword("carol@example.com", "password1")
	assert.NoError(t, err)
}
