package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/models"
)

// BudgetServiceProvider defines the interface for budget services.
type BudgetServiceProvider interface {
	List(userID, month string) ([]models.BudgetStatus, error)
	Create(userID string, budget models.Budget) (models.Budget, error)
	UpdateLimit(userID, id string, limit float64) (models.Budget, error)
	Delete(userID, id string) error
	GetByID(userID, id string) (models.Budget, error)
	CopyForward(fromMonth, toMonth string) (int, error)
}

// BudgetService provides budget CRUD and spend aggregation.
type BudgetService struct {
	db       *sql.DB
	notifier Notifier
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(db *sql.DB, notifier Notifier) *BudgetService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BudgetService{db: db, notifier: notifier}
}

func scanBudget(row rowScanner) (models.Budget, error) {
	var b models.Budget
	var createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Limit, &b.Month, &createdAt, &updatedAt)
	if err != nil {
		return models.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return b, nil
}

// GetByID retrieves one budget, rejecting access by non-owners as forbidden.
func (s *BudgetService) GetByID(userID, id string) (models.Budget, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, category, spend_limit, month, created_at, updated_at FROM budgets WHERE id = ?", id)
	b, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Budget{}, apperr.New(apperr.KindNotFound, "budget not found")
		}
		return models.Budget{}, err
	}
	if b.UserID != userID {
		return models.Budget{}, apperr.New(apperr.KindForbidden, "you do not own this budget")
	}
	return b, nil
}

// List returns the user's budgets, optionally restricted to one month,
// sorted by category and enriched with spend-derived fields. The per-budget
// aggregation queries are independent reads, so they run concurrently.
func (s *BudgetService) List(userID, month string) ([]models.BudgetStatus, error) {
	query := "SELECT id, user_id, category, spend_limit, month, created_at, updated_at FROM budgets WHERE user_id = ?"
	args := []interface{}{userID}
	if month != "" {
		if _, _, err := models.ParseMonth(month); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid month filter", err)
		}
		query += " AND month = ?"
		args = append(args, month)
	}
	query += " ORDER BY category ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	statuses := make([]models.BudgetStatus, len(budgets))
	g, ctx := errgroup.WithContext(context.Background())
	for i, b := range budgets {
		i, b := i, b
		g.Go(func() error {
			spent, err := s.spentInMonth(ctx, userID, b.Category, b.Month)
			if err != nil {
				return err
			}
			statuses[i] = enrich(b, spent)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Queries finish out of order; restore the category ordering contract.
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Category < statuses[j].Category })
	return statuses, nil
}

// spentInMonth sums the absolute value of the user's expense transactions in
// the given category over the calendar month. The window is half-open
// [month start, next month start), which includes 23:59:59 on the last day
// and excludes midnight of the following first.
func (s *BudgetService) spentInMonth(ctx context.Context, userID, category, month string) (float64, error) {
	start, next, err := models.ParseMonth(month)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, "invalid budget month", err)
	}

	var spent sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT SUM(-amount) FROM transactions
		 WHERE user_id = ? AND category = ? AND amount < 0 AND date >= ? AND date < ?`,
		userID, category, fmtTime(start), fmtTime(next),
	).Scan(&spent)
	if err != nil {
		return 0, fmt.Errorf("aggregate spend for %s %s: %w", category, month, err)
	}
	if !spent.Valid {
		return 0, nil
	}
	return spent.Float64, nil
}

// enrich computes the derived fields for one budget. Percentage is
// round-half-up; a zero limit cannot be divided, so it degrades to 100 when
// anything was spent and 0 otherwise.
func enrich(b models.Budget, spent float64) models.BudgetStatus {
	status := models.BudgetStatus{
		Budget:    b,
		Spent:     spent,
		Remaining: b.Limit - spent,
	}
	switch {
	case b.Limit > 0:
		status.Percentage = int(math.Round(spent / b.Limit * 100))
	case spent > 0:
		status.Percentage = 100
	}
	return status
}

// Create stores a new budget. At most one budget may exist per
// (user, category, month).
func (s *BudgetService) Create(userID string, budget models.Budget) (models.Budget, error) {
	if !models.ValidBudgetCategory(budget.Category) {
		return models.Budget{}, apperr.Newf(apperr.KindValidation, "unknown budget category %q", budget.Category)
	}
	if budget.Limit < 0 {
		return models.Budget{}, apperr.New(apperr.KindValidation, "limit must be non-negative")
	}
	if _, _, err := models.ParseMonth(budget.Month); err != nil {
		return models.Budget{}, apperr.Wrap(apperr.KindValidation, "invalid month", err)
	}

	var exists int
	err := s.db.QueryRow(
		"SELECT COUNT(1) FROM budgets WHERE user_id = ? AND category = ? AND month = ?",
		userID, budget.Category, budget.Month,
	).Scan(&exists)
	if err != nil {
		return models.Budget{}, fmt.Errorf("check existing budget: %w", err)
	}
	if exists > 0 {
		return models.Budget{}, apperr.New(apperr.KindConflict, "a budget for this category and month already exists")
	}

	now := time.Now().UTC()
	budget.ID = uuid.New().String()
	budget.UserID = userID
	budget.CreatedAt = now
	budget.UpdatedAt = now

	_, err = s.db.Exec(
		"INSERT INTO budgets(id, user_id, category, spend_limit, month, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		budget.ID, budget.UserID, budget.Category, budget.Limit, budget.Month, fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return models.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	s.notifier.NotifyChange(userID, "budget", "created")
	return budget, nil
}

// UpdateLimit changes a budget's limit. Category and month are immutable
// after creation.
func (s *BudgetService) UpdateLimit(userID, id string, limit float64) (models.Budget, error) {
	budget, err := s.GetByID(userID, id)
	if err != nil {
		return models.Budget{}, err
	}
	if limit < 0 {
		return models.Budget{}, apperr.New(apperr.KindValidation, "limit must be non-negative")
	}

	budget.Limit = limit
	budget.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		"UPDATE budgets SET spend_limit = ?, updated_at = ? WHERE id = ?",
		budget.Limit, fmtTime(budget.UpdatedAt), id,
	)
	if err != nil {
		return models.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	s.notifier.NotifyChange(userID, "budget", "updated")
	return budget, nil
}

// Delete removes one of the user's budgets.
func (s *BudgetService) Delete(userID, id string) error {
	if _, err := s.GetByID(userID, id); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM budgets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.notifier.NotifyChange(userID, "budget", "deleted")
	return nil
}

// CopyForward creates budgets for toMonth from every fromMonth budget whose
// (user, category) has no budget in toMonth yet. Used by the optional
// rollover job at month boundaries. Returns how many budgets were created.
func (s *BudgetService) CopyForward(fromMonth, toMonth string) (int, error) {
	if _, _, err := models.ParseMonth(fromMonth); err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, "invalid source month", err)
	}
	if _, _, err := models.ParseMonth(toMonth); err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, "invalid target month", err)
	}

	now := fmtTime(time.Now().UTC())
	res, err := s.db.Exec(
		`INSERT INTO budgets(id, user_id, category, spend_limit, month, created_at, updated_at)
		 SELECT lower(hex(randomblob(16))), b.user_id, b.category, b.spend_limit, ?, ?, ?
		 FROM budgets b
		 WHERE b.month = ?
		   AND NOT EXISTS (
			SELECT 1 FROM budgets t
			WHERE t.user_id = b.user_id AND t.category = b.category AND t.month = ?
		   )`,
		toMonth, now, now, fromMonth, toMonth,
	)
	if err != nil {
		return 0, fmt.Errorf("copy budgets forward: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
