package analytics

import (
	"time"

	"github.com/fintrack/fintrack-be/internal/models"
)

// Filter narrows which transactions enter an aggregation before bucketing.
// Zero fields are ignored. Year/Month/Week match calendar fields of the
// transaction date (Week uses the ISO week number); RecentDays keeps only
// transactions dated within the last N days relative to Now.
type Filter struct {
	Year       int
	Month      time.Month
	Week       int
	RecentDays int

	// Now anchors RecentDays; tests pin it. Zero means time.Now().
	Now time.Time
}

// Apply returns the transactions passing the filter. Transactions without a
// date never pass a non-empty filter.
func (f Filter) Apply(txs []models.Transaction) []models.Transaction {
	if f.Year == 0 && f.Month == 0 && f.Week == 0 && f.RecentDays == 0 {
		return txs
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	var cutoff time.Time
	if f.RecentDays > 0 {
		cutoff = now.AddDate(0, 0, -f.RecentDays)
	}

	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		if f.Year != 0 && t.Date.Year() != f.Year {
			continue
		}
		if f.Month != 0 && t.Date.Month() != f.Month {
			continue
		}
		if f.Week != 0 {
			if _, week := t.Date.ISOWeek(); week != f.Week {
				continue
			}
		}
		if f.RecentDays > 0 && t.Date.Before(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out
}
