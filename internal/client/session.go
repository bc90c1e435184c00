package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CurrentUser is the locally remembered logged-in account.
type CurrentUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token,omitempty"`
}

// SessionStore persists the current user as a JSON file.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// DefaultSessionPath returns <user config dir>/harf/current_user.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "harf", "current_user.json"), nil
}

// Load returns the stored user, or nil when there is none. A corrupt file is
// logged and treated as no user.
func (s *SessionStore) Load() *CurrentUser {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to read session file", "path", s.path, "error", err)
		}
		return nil
	}

	var u CurrentUser
	if err := json.Unmarshal(raw, &u); err != nil {
		slog.Warn("failed to parse session file", "path", s.path, "error", err)
		return nil
	}
	return &u
}

func (s *SessionStore) Save(u *CurrentUser) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

// Clear removes the stored user. Clearing an empty store is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
