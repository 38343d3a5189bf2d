package model

import "time"

// TimeEntry is a single logged work interval as reported by the time-tracking service.
type TimeEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Start           time.Time `json:"start"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// Period is a Saturday-through-Friday pay period. Both bounds are inclusive.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// PeriodTotal is the number of seconds accumulated in one period.
type PeriodTotal struct {
	Period  Period
	Seconds int64
}

// User is the identity owning the queried entries.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
