package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack-be/internal/database"
)

// newTestDB opens an isolated in-memory database with the schema applied.
// A single connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// newTestUser registers a user and returns its ID.
func newTestUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()

	user, err := NewUserService(db).Register("Test User", email, "password123")
	require.NoError(t, err)
	return user.ID
}
