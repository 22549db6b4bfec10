package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// TransactionUpdate carries the fields of a partial update. Nil means
// "leave unchanged".
type TransactionUpdate struct {
	Text     *string
	Amount   *float64
	Category *string
	Date     *time.Time
}

// TransactionServiceProvider defines the interface for transaction services.
type TransactionServiceProvider interface {
	List(userID string, filter models.TransactionFilter) (models.TransactionPage, error)
	Create(userID string, tx models.Transaction) (models.Transaction, error)
	Update(userID, id string, upd TransactionUpdate) (models.Transaction, error)
	Delete(userID, id string) error
	GetByID(userID, id string) (models.Transaction, error)
}

// TransactionService provides business logic for transactions.
type TransactionService struct {
	db       *sql.DB
	notifier Notifier
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(db *sql.DB, notifier Notifier) *TransactionService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TransactionService{db: db, notifier: notifier}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
// Queries using it must specify ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// buildFilter translates a TransactionFilter into a conjunctive WHERE clause
// scoped to one user. Returns the clause (starting with "WHERE") and args.
func buildFilter(userID string, f models.TransactionFilter) (string, []interface{}) {
	clauses := []string{"user_id = ?"}
	args := []interface{}{userID}

	if f.Category != "" {
		clauses = append(clauses, `LOWER(category) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Category))+"%")
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		clauses = append(clauses, `(LOWER(text) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.MinAmount != nil {
		clauses = append(clauses, "amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		clauses = append(clauses, "amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if f.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, fmtTime(*f.StartDate))
	}
	if f.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, fmtTime(*f.EndDate))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps the sort selector to a whitelisted ORDER BY. The id
// tiebreak keeps pagination stable for equal keys.
func orderClause(sortBy string) string {
	switch sortBy {
	case "amount":
		return "ORDER BY amount DESC, id ASC"
	case "category":
		return "ORDER BY LOWER(category) ASC, id ASC"
	default: // date
		return "ORDER BY date DESC, id ASC"
	}
}

// List returns one page of the user's transactions matching the filter.
// A filter that matches nothing yields an empty page with total 0; a page
// past the end yields an empty item list with the true total. Neither is an
// error.
func (s *TransactionService) List(userID string, filter models.TransactionFilter) (models.TransactionPage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	where, args := buildFilter(userID, filter)

	var total int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM transactions "+where, args...).Scan(&total); err != nil {
		return models.TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, user_id, text, amount, category, date, created_at, updated_at FROM transactions %s %s LIMIT ? OFFSET ?",
		where, orderClause(filter.SortBy),
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return models.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	items := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return models.TransactionPage{}, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return models.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return models.TransactionPage{
		Items: items,
		Count: len(items),
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var tx models.Transaction
	var date, createdAt, updatedAt string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Text, &tx.Amount, &tx.Category, &date, &createdAt, &updatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	tx.Date = parseTime(date)
	tx.CreatedAt = parseTime(createdAt)
	tx.UpdatedAt = parseTime(updatedAt)
	return tx, nil
}

// GetByID retrieves one of the user's transactions. Foreign transactions are
// reported as forbidden rather than not found.
func (s *TransactionService) GetByID(userID, id string) (models.Transaction, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, text, amount, category, date, created_at, updated_at FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, apperr.New(apperr.KindNotFound, "transaction not found")
		}
		return models.Transaction{}, err
	}
	if tx.UserID != userID {
		return models.Transaction{}, apperr.New(apperr.KindForbidden, "you do not own this transaction")
	}
	return tx, nil
}

// Create records a new transaction for the user. The date defaults to now.
func (s *TransactionService) Create(userID string, tx models.Transaction) (models.Transaction, error) {
	tx.Text = strings.TrimSpace(tx.Text)
	if tx.Text == "" {
		return models.Transaction{}, apperr.New(apperr.KindValidation, "text is required")
	}
	if tx.Category == "" {
		return models.Transaction{}, apperr.New(apperr.KindValidation, "category is required")
	}

	now := time.Now().UTC()
	tx.ID = uuid.New().String()
	tx.UserID = userID
	if tx.Date.IsZero() {
		tx.Date = now
	}
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := s.db.Exec(
		"INSERT INTO transactions(id, user_id, text, amount, category, date, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		tx.ID, tx.UserID, tx.Text, tx.Amount, tx.Category, fmtTime(tx.Date), fmtTime(tx.CreatedAt), fmtTime(tx.UpdatedAt),
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.notifier.NotifyChange(userID, "transaction", "created")
	return tx, nil
}

// Update partially replaces fields of one of the user's transactions.
func (s *TransactionService) Update(userID, id string, upd TransactionUpdate) (models.Transaction, error) {
	existing, err := s.GetByID(userID, id)
	if err != nil {
		return models.Transaction{}, err
	}

	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return models.Transaction{}, apperr.New(apperr.KindValidation, "text cannot be empty")
		}
		existing.Text = text
	}
	if upd.Amount != nil {
		existing.Amount = *upd.Amount
	}
	if upd.Category != nil {
		if *upd.Category == "" {
			return models.Transaction{}, apperr.New(apperr.KindValidation, "category cannot be empty")
		}
		existing.Category = *upd.Category
	}
	if upd.Date != nil {
		existing.Date = *upd.Date
	}
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		"UPDATE transactions SET text = ?, amount = ?, category = ?, date = ?, updated_at = ? WHERE id = ?",
		existing.Text, existing.Amount, existing.Category, fmtTime(existing.Date), fmtTime(existing.UpdatedAt), id,
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.notifier.NotifyChange(userID, "transaction", "updated")
	return existing, nil
}

// Delete removes one of the user's transactions.
func (s *TransactionService) Delete(userID, id string) error {
	if _, err := s.GetByID(userID, id); err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.notifier.NotifyChange(userID, "transaction", "deleted")
	return nil
}
