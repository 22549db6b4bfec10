package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack-be/internal/models"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s := Session{
		Token: "some.jwt.token",
		User:  models.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
	}
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, s.Token, loaded.Token)
	assert.Equal(t, "ana@example.com", loaded.User.Email)
	assert.True(t, loaded.Active())
}

func TestLoadSessionMissingFileIsEmpty(t *testing.T) {
	s, err := LoadSession(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, s.Active())
}

func TestLoadSessionCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadSession(path)
	assert.Error(t, err)
}

func TestClearSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, Session{Token: "tok"}.Save(path))

	require.NoError(t, ClearSession(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is not an error.
	assert.NoError(t, ClearSession(path))
}
