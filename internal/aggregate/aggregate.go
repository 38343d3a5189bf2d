// Package aggregate sums time entries per user and per pay period.
package aggregate

import (
	"github.com/Tiliavir/paymo-paybot/internal/model"
)

// Validate rejects the whole batch if any entry has a negative duration or
// no start instant.
func Validate(entries []model.TimeEntry) error {
	for _, e := range entries {
		if e.DurationSeconds < 0 {
			return &model.DataError{EntryID: e.ID, Reason: "negative duration"}
		}
		if e.Start.IsZero() {
			return &model.DataError{EntryID: e.ID, Reason: "missing start time"}
		}
	}
	return nil
}

// SumForUser returns the total duration in seconds of the entries owned by userID.
func SumForUser(entries []model.TimeEntry, userID int64) int64 {
	var total int64
	for _, e := range entries {
		if e.UserID == userID {
			total += e.DurationSeconds
		}
	}
	return total
}

// BucketByPeriod assigns each of userID's entries to the first period whose
// bounds contain its start and returns one total per period, in the order
// given. Entries outside every period are dropped.
func BucketByPeriod(entries []model.TimeEntry, userID int64, periods []model.Period) []model.PeriodTotal {
	totals := make([]model.PeriodTotal, len(periods))
	for i, p := range periods {
		totals[i].Period = p
	}

	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		for i := range totals {
			if totals[i].Period.Contains(e.Start) {
				totals[i].Seconds += e.DurationSeconds
				break
			}
		}
	}
	return totals
}

// AverageNonZero returns the mean hours per period over the periods that
// have any time logged. It returns 0 when none do.
func AverageNonZero(totals []model.PeriodTotal) float64 {
	var sum float64
	n := NonZero(totals)
	if n == 0 {
		return 0
	}
	for _, t := range totals {
		sum += float64(t.Seconds) / 3600
	}
	return sum / float64(n)
}

// NonZero counts the periods with any time logged.
func NonZero(totals []model.PeriodTotal) int {
	n := 0
	for _, t := range totals {
		if t.Seconds != 0 {
			n++
		}
	}
	return n
}
