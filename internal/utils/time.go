package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitpulse/internal/constants"
)

// DateKey returns the canonical date key (YYYY-MM-DD) for t, taken from t's own
// calendar fields. Callers pass local times; the key is never shifted to UTC.
func DateKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// Today returns the date key of the injected current time.
func Today(now time.Time) string {
	return DateKey(now)
}

// CivilDate drops the clock from t and returns its calendar day as midnight
// UTC. All day arithmetic in the engine runs on civil dates so that daylight
// saving transitions never skip or repeat a day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDateKey parses a date key into a civil date.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// ValidateDateKey checks if the string is a well-formed date key.
func ValidateDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

// ParseDateOrToday parses key, or returns today's civil date when key is empty.
func ParseDateOrToday(key string, now time.Time) (time.Time, error) {
	if key == "" {
		return CivilDate(now), nil
	}
	return ParseDateKey(key)
}

// Weekday returns the weekday index of a date key, 0=Sunday..6=Saturday.
func Weekday(key string) (int, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// DaysInMonth returns the number of days in the given month, accounting for
// leap years.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays shifts t by n calendar days. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DateRange returns n consecutive civil dates ending at end, oldest first.
func DateRange(end time.Time, n int) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	end = CivilDate(end)
	days := make([]time.Time, n)
	for i := 0; i < n; i++ {
		days[i] = AddDays(end, i-(n-1))
	}
	return days
}

// FirstWeekdayOfMonth returns the weekday of the first day of the month.
func FirstWeekdayOfMonth(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}
