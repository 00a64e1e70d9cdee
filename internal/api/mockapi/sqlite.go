package mockapi

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"adminconsole/internal/api"
	"adminconsole/internal/logging"

	_ "modernc.org/sqlite"
)

const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identity TEXT NOT NULL,
	identity_key TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	password_hash BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// sqliteRepository keeps users in a SQLite database so a mock server can be
// restarted without losing accounts.
type sqliteRepository struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:" is
// accepted for throwaway databases.
func OpenSQLite(path string) (Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryMock).Debug("Failed to set sqlite busy_timeout: %v", err)
	}

	if _, err := db.Exec(usersSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	logging.Mock("Opened user database at %s", path)
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Insert(u api.User, hash []byte) (api.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, err := r.lookupLocked(u.Identity); err != nil {
		return api.User{}, err
	} else if id != 0 {
		return api.User{}, errDuplicate
	}

	res, err := r.db.Exec(
		`INSERT INTO users (identity, identity_key, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Identity, identityKey(u.Identity), u.Role, hash, u.CreatedAt.Unix())
	if err != nil {
		return api.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return api.User{}, fmt.Errorf("failed to read user id: %w", err)
	}
	u.ID = id
	u.Password = ""
	return u, nil
}

func (r *sqliteRepository) Update(id int64, identity, role string, hash []byte) (api.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	other, err := r.lookupLocked(identity)
	if err != nil {
		return api.User{}, err
	}
	if other != 0 && other != id {
		return api.User{}, errDuplicate
	}

	var res sql.Result
	if hash == nil {
		res, err = r.db.Exec(`UPDATE users SET identity = ?, identity_key = ?, role = ? WHERE id = ?`,
			identity, identityKey(identity), role, id)
	} else {
		res, err = r.db.Exec(`UPDATE users SET identity = ?, identity_key = ?, role = ?, password_hash = ? WHERE id = ?`,
			identity, identityKey(identity), role, hash, id)
	}
	if err != nil {
		return api.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return api.User{}, errNotFound
	}
	u, _, err := r.scanOne(`SELECT id, identity, role, password_hash, created_at FROM users WHERE id = ?`, id)
	return u, err
}

func (r *sqliteRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}

func (r *sqliteRepository) ByIdentity(identity string) (api.User, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scanOne(`SELECT id, identity, role, password_hash, created_at FROM users WHERE identity_key = ?`, identityKey(identity))
}

func (r *sqliteRepository) List(offset, limit int) ([]api.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.Query(`SELECT id, identity, role, created_at FROM users ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []api.User{}
	for rows.Next() {
		var u api.User
		var created int64
		if err := rows.Scan(&u.ID, &u.Identity, &u.Role, &created); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *sqliteRepository) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteRepository) lookupLocked(identity string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM users WHERE identity_key = ?`, identityKey(identity)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}
	return id, nil
}

func (r *sqliteRepository) scanOne(query string, arg any) (api.User, []byte, error) {
	var u api.User
	var hash []byte
	var created int64
	err := r.db.QueryRow(query, arg).Scan(&u.ID, &u.Identity, &u.Role, &hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return api.User{}, nil, errNotFound
	}
	if err != nil {
		return api.User{}, nil, fmt.Errorf("failed to read user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, hash, nil
}

func identityKey(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
