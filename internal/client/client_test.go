package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack-be/internal/api"
	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/database"
	"github.com/fintrack/fintrack-be/internal/models"
	"github.com/fintrack/fintrack-be/internal/services"
	"github.com/fintrack/fintrack-be/internal/websocket"
)

// newTestStack spins up a real server over an in-memory database and a
// Client pointed at it.
func newTestStack(t *testing.T) (*Client, string) {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	hub := websocket.NewHub()
	go hub.Run()

	router := api.NewRouter(
		auth.New("test-secret", time.Hour),
		hub,
		services.NewUserService(db),
		services.NewTransactionService(db, hub),
		services.NewBudgetService(db, hub),
		"http://localhost:3000",
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	c, err := New(srv.URL, sessionPath)
	require.NoError(t, err)
	return c, sessionPath
}

func TestClientRegisterPersistsSession(t *testing.T) {
	c, sessionPath := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ana", "ana@example.com", "password123"))
	assert.True(t, c.Session().Active())
	assert.Equal(t, "ana@example.com", c.Session().User.Email)

	// A fresh Client picks the credential up from disk.
	c2, err := New(c.baseURL, sessionPath)
	require.NoError(t, err)
	user, err := c2.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
}

func TestClientLoginLogout(t *testing.T) {
	c, _ := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ana", "ana@example.com", "password123"))
	require.NoError(t, c.Logout())
	assert.False(t, c.Session().Active())

	err := c.Login(ctx, "ana@example.com", "wrong")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	require.NoError(t, c.Login(ctx, "ana@example.com", "password123"))
	assert.True(t, c.Session().Active())
}

func TestClientStaleTokenClearsSession(t *testing.T) {
	c, sessionPath := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ana", "ana@example.com", "password123"))
	c.session.Token = "tampered.token.value"

	_, err := c.Me(ctx)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.False(t, c.Session().Active())

	onDisk, err := LoadSession(sessionPath)
	require.NoError(t, err)
	assert.False(t, onDisk.Active(), "the stored credential is gone too")
}

func TestClientAllTransactionsWalksPages(t *testing.T) {
	c, _ := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ana", "ana@example.com", "password123"))

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 120; i++ {
		_, err := c.CreateTransaction(ctx, "Item", -1, "Comida", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	all, err := c.AllTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 120)

	seen := make(map[string]bool, len(all))
	for _, tx := range all {
		assert.False(t, seen[tx.ID], "transaction %s appeared twice", tx.ID)
		seen[tx.ID] = true
	}
}

func TestClientBudgets(t *testing.T) {
	c, _ := newTestStack(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "Ana", "ana@example.com", "password123"))

	_, err := c.CreateTransaction(ctx, "Groceries", -45.50, "Comida",
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = c.CreateBudget(ctx, "Comida", 300, "2024-03")
	require.NoError(t, err)

	statuses, err := c.Budgets(ctx, "2024-03")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.InDelta(t, 45.50, statuses[0].Spent, 1e-9)
	assert.Equal(t, 15, statuses[0].Percentage)

	_, err = c.CreateBudget(ctx, "Comida", 100, "2024-03")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}
