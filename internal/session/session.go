// Package session owns the persisted authentication state: the backend
// token and the identity it was issued for. The session is an explicit
// object constructed at startup and handed to whatever needs it; nothing
// in this repo reads the session through a global.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"reqman-cli/internal/model"
)

// Session is the authenticated state. A nil *Session means "not logged in".
type Session struct {
	Token string                  `json:"token"`
	User  model.AuthenticatedUser `json:"user"`
}

// Store reads and writes the session file. Dir defaults to the per-user
// config dir when empty.
type Store struct {
	Dir string
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.reqman).
	if v := strings.TrimSpace(os.Getenv("REQMAN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".reqman"), nil
}

func (s Store) path() (string, error) {
	dir := s.Dir
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	return filepath.Join(dir, "session.json"), nil
}

// Load returns the persisted session, or nil when none exists. A session
// file with an empty token is treated as absent.
func (s Store) Load() (*Session, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sess.Token) == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s Store) Save(sess *Session) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	// The file holds a bearer token; keep it private and write atomically
	// so a concurrent CLI invocation never sees a torn file.
	return atomicWriteFile(dir, "session.json.*.tmp", path, b, 0o600)
}

// Clear removes the persisted session. Clearing an absent session is not
// an error; teardown must be idempotent.
func (s Store) Clear() error {
	path, err := s.path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
