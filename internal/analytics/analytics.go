// Package analytics computes chart-ready aggregates from an in-memory set of
// transactions. It performs no I/O: callers fetch whatever snapshot they want
// (typically broader than one paginated view) and feed it in.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fintrack/fintrack-be/internal/models"
)

// Granularity selects the time-bucket size for series aggregations.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// BucketKey returns the canonical sortable key for t at the granularity:
// ISO date, "YYYY-Www" (ISO 8601 week-year), "YYYY-MM", or "YYYY". Lexical
// order on keys of one granularity is chronological.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	case Year:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// countable reports whether an amount participates in sums at all.
func countable(amount float64) bool {
	return amount != 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// TimePoint is one bucket of a time series.
type TimePoint struct {
	Bucket string  `json:"bucket"`
	Amount float64 `json:"amount"`
}

// SpendOverTime groups expense transactions into time buckets, summing
// absolute amounts. Buckets come back in chronological order. Transactions
// without a date are left out.
func SpendOverTime(txs []models.Transaction, g Granularity) []TimePoint {
	sums := map[string]float64{}
	for _, t := range txs {
		if !t.IsExpense() || !countable(t.Amount) || t.Date.IsZero() {
			continue
		}
		sums[BucketKey(t.Date, g)] += math.Abs(t.Amount)
	}

	points := make([]TimePoint, 0, len(sums))
	for bucket, amount := range sums {
		points = append(points, TimePoint{Bucket: bucket, Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Bucket < points[j].Bucket })
	return points
}

// CategoryTotal is one slice of a category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ExpenseByCategory sums absolute expense amounts per category, largest
// first.
func ExpenseByCategory(txs []models.Transaction) []CategoryTotal {
	return byCategory(txs, func(t models.Transaction) bool { return t.IsExpense() })
}

// IncomeByCategory sums income amounts per category, largest first.
func IncomeByCategory(txs []models.Transaction) []CategoryTotal {
	return byCategory(txs, func(t models.Transaction) bool { return t.Amount > 0 })
}

func byCategory(txs []models.Transaction, include func(models.Transaction) bool) []CategoryTotal {
	sums := map[string]float64{}
	for _, t := range txs {
		if !countable(t.Amount) || !include(t) {
			continue
		}
		category := t.Category
		if category == "" {
			category = "Otros"
		}
		sums[category] += math.Abs(t.Amount)
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for category, amount := range sums {
		totals = append(totals, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// PeriodFlow is one bucket of an income-vs-expense series. Balance is the
// running net (income − expense) accumulated over all buckets so far.
type PeriodFlow struct {
	Bucket  string  `json:"bucket"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// IncomeExpenseSeries buckets transactions at the granularity, summing income
// and expense separately, then derives the cumulative balance left to right.
func IncomeExpenseSeries(txs []models.Transaction, g Granularity) []PeriodFlow {
	flows := map[string]*PeriodFlow{}
	for _, t := range txs {
		if !countable(t.Amount) || t.Date.IsZero() {
			continue
		}
		key := BucketKey(t.Date, g)
		flow, ok := flows[key]
		if !ok {
			flow = &PeriodFlow{Bucket: key}
			flows[key] = flow
		}
		if t.Amount > 0 {
			flow.Income += t.Amount
		} else {
			flow.Expense += math.Abs(t.Amount)
		}
	}

	series := make([]PeriodFlow, 0, len(flows))
	for _, flow := range flows {
		series = append(series, *flow)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Bucket < series[j].Bucket })

	balance := 0.0
	for i := range series {
		balance += series[i].Income - series[i].Expense
		series[i].Balance = balance
	}
	return series
}
