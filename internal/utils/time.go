package utils

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// FormatDate formats a time.Time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses a date string in YYYY-MM-DD format
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysInclusive counts calendar days from start to end, both included.
// Returns 0 when end is before start.
func DaysInclusive(start, end time.Time) int {
	s := StartOfDay(start)
	e := StartOfDay(end)
	if e.Before(s) {
		return 0
	}
	// Calendar arithmetic avoids DST-length days skewing the count
	days := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// CalculateWeekRange calculates the Monday (start) and Sunday (end) of the week containing the given date
func CalculateWeekRange(date time.Time) (monday time.Time, sunday time.Time) {
	// Get the weekday (0 = Sunday, 1 = Monday, ..., 6 = Saturday)
	weekday := int(date.Weekday())

	// Convert to Monday = 0, Tuesday = 1, ..., Sunday = 6
	if weekday == 0 {
		weekday = 7 // Sunday becomes 7
	}
	daysFromMonday := weekday - 1

	monday = StartOfDay(date.AddDate(0, 0, -daysFromMonday))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// CalculateMonthRange returns the first and last day of the month containing date
func CalculateMonthRange(date time.Time) (first time.Time, last time.Time) {
	first = time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	last = first.AddDate(0, 1, -1)
	return first, last
}

// CalculateYearRange returns January 1st and December 31st of date's year
func CalculateYearRange(date time.Time) (first time.Time, last time.Time) {
	first = time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
	last = time.Date(date.Year(), time.December, 31, 0, 0, 0, 0, date.Location())
	return first, last
}

// GenerateUUID returns a new random identifier
func GenerateUUID() string {
	return uuid.New().String()
}

// Round2 rounds to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
