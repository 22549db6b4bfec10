package models

import (
	"fmt"
	"time"
)

// BudgetCategories is the closed set of categories a budget may target.
// Transactions are free-text, but a budget only tracks one of these.
var BudgetCategories = []string{
	"Comida",
	"Transporte",
	"Entretenimiento",
	"Salud",
	"Otros",
	"Casa",
}

// ValidBudgetCategory reports whether c belongs to the fixed category set.
func ValidBudgetCategory(c string) bool {
	for _, known := range BudgetCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Budget is a monthly spending limit for one category.
// (UserID, Category, Month) is unique.
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Category  string    `json:"category"`
	Limit     float64   `json:"limit"` // non-negative
	Month     string    `json:"month"` // "YYYY-MM"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BudgetStatus is a budget enriched with spend-derived fields. The derived
// fields are computed at read time and never persisted.
type BudgetStatus struct {
	Budget
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage int     `json:"percentage"`
}

// ParseMonth validates a "YYYY-MM" key and returns the first instant of that
// month and of the following month, both UTC. Filtering with
// date >= start && date < next covers the whole calendar month regardless of
// its day count.
func ParseMonth(month string) (start, next time.Time, err error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", month)
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}
