package services

import "time"

// dateOf strips the time-of-day from t, returning midnight UTC of the same
// calendar date. Transactions and budget windows compare at date
// granularity only.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
