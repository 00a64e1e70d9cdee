// Package sessionfile persists the console session between runs so the CLI
// subcommands and the interactive console share one login.
package sessionfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"adminconsole/internal/logging"
	"adminconsole/internal/state/session"

	"gopkg.in/yaml.v3"
)

// File is the on-disk session. The zero session is never written; Save of an
// unauthenticated state removes the file instead.
type File struct {
	mu   sync.Mutex
	path string
}

// New returns a File at path.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the session. A missing file yields the zero state.
func (f *File) Load() (session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (session.State, error) {
	var s session.State
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read session: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return session.State{}, fmt.Errorf("failed to parse session %s: %w", f.path, err)
	}
	return s, nil
}

// Save writes the session with owner-only permissions.
func (f *File) Save(s session.State) error {
	if !s.Authenticated() {
		return f.Remove()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write-then-rename so a watcher never reads a half-written file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session: %w", err)
	}
	logging.SessionDebug("saved session for user %d to %s", s.ID, f.path)
	return nil
}

// Remove deletes the session file. Removing a missing file is not an error.
func (f *File) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	logging.SessionDebug("removed session file %s", f.path)
	return nil
}
