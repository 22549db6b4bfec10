package services

import "time"

// Timestamps are persisted as fixed-width RFC3339 UTC text. Fixed fractional
// digits keep lexical comparison in SQL chronological; RFC3339Nano would trim
// trailing zeros and break that.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
