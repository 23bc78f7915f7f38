package models

import "time"

// DateLayout is the calendar-date key format used for streaks, daily quest
// rotation and per-day history. All day comparisons in the system happen on
// these local-date strings, not on timestamps.
const DateLayout = "2006-01-02"

// DateKey returns the local calendar date of t as a map key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring the time of day of either.
func DaysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}
