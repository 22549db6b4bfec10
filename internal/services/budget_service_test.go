package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/models"
)

func mustCreateBudget(t *testing.T, svc *BudgetService, userID, category string, limit float64, month string) models.Budget {
	t.Helper()

	b, err := svc.Create(userID, models.Budget{Category: category, Limit: limit, Month: month})
	require.NoError(t, err)
	return b
}

func TestBudgetSpentWithinCalendarMonth(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	txs := NewTransactionService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateBudget(t, budgets, userID, "Comida", 300, "2024-03")

	// Inside the window, including the very last second of the month.
	mustCreateTx(t, txs, userID, "Groceries", -45.50, "Comida", "2024-03-10T12:00:00Z")
	mustCreateTx(t, txs, userID, "Late snack", -10, "Comida", "2024-03-31T23:59:59Z")
	// Outside: midnight of the next month, the previous month, another
	// category, and income in the same category.
	mustCreateTx(t, txs, userID, "April food", -99, "Comida", "2024-04-01T00:00:00Z")
	mustCreateTx(t, txs, userID, "Feb food", -99, "Comida", "2024-02-29T12:00:00Z")
	mustCreateTx(t, txs, userID, "Bus", -99, "Transporte", "2024-03-15T12:00:00Z")
	mustCreateTx(t, txs, userID, "Refund", 20, "Comida", "2024-03-15T12:00:00Z")

	statuses, err := budgets.List(userID, "2024-03")
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	assert.InDelta(t, 55.50, statuses[0].Spent, 1e-9)
	assert.InDelta(t, 244.50, statuses[0].Remaining, 1e-9)
	assert.Equal(t, 19, statuses[0].Percentage) // round(55.5/300*100) = round(18.5)
}

func TestBudgetExampleFromGettingStarted(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	txs := NewTransactionService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateTx(t, txs, userID, "Groceries", -45.50, "Comida", "2024-03-10T00:00:00Z")
	mustCreateBudget(t, budgets, userID, "Comida", 300, "2024-03")

	statuses, err := budgets.List(userID, "")
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	assert.InDelta(t, 45.50, statuses[0].Spent, 1e-9)
	assert.InDelta(t, 254.50, statuses[0].Remaining, 1e-9)
	assert.Equal(t, 15, statuses[0].Percentage)
}

func TestBudgetPercentageRounding(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	txs := NewTransactionService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateBudget(t, budgets, userID, "Comida", 300, "2024-03")
	mustCreateBudget(t, budgets, userID, "Casa", 300, "2024-03")

	mustCreateTx(t, txs, userID, "a", -150, "Comida", "2024-03-05T00:00:00Z")
	mustCreateTx(t, txs, userID, "b", -320, "Casa", "2024-03-05T00:00:00Z")

	statuses, err := budgets.List(userID, "2024-03")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	// Sorted by category: Casa first.
	assert.Equal(t, 107, statuses[0].Percentage)
	assert.InDelta(t, -20, statuses[0].Remaining, 1e-9)
	assert.Equal(t, 50, statuses[1].Percentage)
}

func TestBudgetZeroLimitDoesNotDivide(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	txs := NewTransactionService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateBudget(t, budgets, userID, "Comida", 0, "2024-03")
	mustCreateBudget(t, budgets, userID, "Casa", 0, "2024-03")

	mustCreateTx(t, txs, userID, "a", -10, "Comida", "2024-03-05T00:00:00Z")

	statuses, err := budgets.List(userID, "2024-03")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, 0, statuses[0].Percentage, "Casa: nothing spent")
	assert.Equal(t, 100, statuses[1].Percentage, "Comida: spent against a zero limit")
}

func TestBudgetListSortedByCategory(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateBudget(t, budgets, userID, "Transporte", 100, "2024-03")
	mustCreateBudget(t, budgets, userID, "Casa", 100, "2024-03")
	mustCreateBudget(t, budgets, userID, "Comida", 100, "2024-03")

	statuses, err := budgets.List(userID, "")
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "Casa", statuses[0].Category)
	assert.Equal(t, "Comida", statuses[1].Category)
	assert.Equal(t, "Transporte", statuses[2].Category)
}

func TestBudgetDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	mustCreateBudget(t, budgets, userID, "Comida", 300, "2024-03")

	_, err := budgets.Create(userID, models.Budget{Category: "Comida", Limit: 500, Month: "2024-03"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// A different month or category is fine.
	_, err = budgets.Create(userID, models.Budget{Category: "Comida", Limit: 500, Month: "2024-04"})
	assert.NoError(t, err)
	_, err = budgets.Create(userID, models.Budget{Category: "Casa", Limit: 500, Month: "2024-03"})
	assert.NoError(t, err)
}

func TestBudgetCreateValidation(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	_, err := budgets.Create(userID, models.Budget{Category: "Videojuegos", Limit: 100, Month: "2024-03"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "category outside the fixed set")

	_, err = budgets.Create(userID, models.Budget{Category: "Comida", Limit: -5, Month: "2024-03"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = budgets.Create(userID, models.Budget{Category: "Comida", Limit: 100, Month: "marzo"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBudgetUpdateOnlyLimit(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	b := mustCreateBudget(t, budgets, userID, "Comida", 300, "2024-03")

	updated, err := budgets.UpdateLimit(userID, b.ID, 450)
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Limit)
	assert.Equal(t, "Comida", updated.Category)
	assert.Equal(t, "2024-03", updated.Month)
}

func TestBudgetMutationByNonOwnerForbidden(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	alice := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")

	b := mustCreateBudget(t, budgets, alice, "Comida", 300, "2024-03")

	_, err := budgets.UpdateLimit(bob, b.ID, 1)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = budgets.Delete(bob, b.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Alice still owns an intact budget.
	got, err := budgets.GetByID(alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Limit)
}

func TestBudgetCopyForward(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	alice := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")

	mustCreateBudget(t, budgets, alice, "Comida", 300, "2024-03")
	mustCreateBudget(t, budgets, alice, "Casa", 800, "2024-03")
	mustCreateBudget(t, budgets, bob, "Comida", 150, "2024-03")
	// Alice already planned Casa for April; rollover must not duplicate it.
	mustCreateBudget(t, budgets, alice, "Casa", 900, "2024-04")

	created, err := budgets.CopyForward("2024-03", "2024-04")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	april, err := budgets.List(alice, "2024-04")
	require.NoError(t, err)
	require.Len(t, april, 2)
	assert.Equal(t, 900.0, april[0].Limit, "pre-existing Casa budget untouched")
	assert.Equal(t, 300.0, april[1].Limit, "Comida copied from March")

	bobApril, err := budgets.List(bob, "2024-04")
	require.NoError(t, err)
	require.Len(t, bobApril, 1)
	assert.Equal(t, 150.0, bobApril[0].Limit)
}

func TestBudgetListInvalidMonthFilter(t *testing.T) {
	db := newTestDB(t)
	budgets := NewBudgetService(db, nil)
	userID := newTestUser(t, db, "u@example.com")

	_, err := budgets.List(userID, "not-a-month")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
