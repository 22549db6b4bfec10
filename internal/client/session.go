// Package client is a Go consumer of the fintrack API. It owns the local
// session lifecycle and the in-memory aggregation inputs for reporting.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fintrack/fintrack-be/internal/models"
)

// Session is the locally cached credential plus the user it belongs to.
// It is passed explicitly rather than held in package globals, and has an
// explicit load/save/clear lifecycle.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// LoadSession reads a session file. A missing file yields an empty session,
// not an error.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Save writes the session file, creating parent directories as needed.
func (s Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	// The token is a credential; keep the file private.
	return os.WriteFile(path, data, 0o600)
}

// ClearSession removes the session file. Clearing an absent session is fine.
func ClearSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Active reports whether a credential is present.
func (s Session) Active() bool {
	return s.Token != ""
}
