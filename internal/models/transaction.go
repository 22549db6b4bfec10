package models

import "time"

// Transaction is a single income (amount > 0) or expense (amount < 0) entry.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"` // free text, unlike budget categories
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// TransactionFilter holds the optional criteria for listing transactions.
// All provided criteria are combined with AND; zero values mean "not set".
type TransactionFilter struct {
	Category  string     // case-insensitive substring on category
	Search    string     // case-insensitive substring on text OR category
	MinAmount *float64   // inclusive
	MaxAmount *float64   // inclusive
	StartDate *time.Time // inclusive
	EndDate   *time.Time // inclusive
	SortBy    string     // "date" (default, desc), "amount" (desc), "category" (asc)
	Page      int        // 1-based; values < 1 become 1
	Limit     int        // clamped to [1, 100]; 0 becomes 20
}

// TransactionPage is a single page of a filtered listing.
type TransactionPage struct {
	Items []Transaction `json:"data"`
	Count int           `json:"count"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Pages int           `json:"pages"`
}
