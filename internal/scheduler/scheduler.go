package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/utils"
)

// Scheduler answers "what is due" questions relative to an injected clock.
type Scheduler struct {
	now func() time.Time
}

func New() *Scheduler {
	return &Scheduler{now: time.Now}
}

// NewWithClock returns a Scheduler that reads the current time from now.
func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Now returns the current local time according to the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Today returns the civil date of the scheduler's current time.
func (s *Scheduler) Today() time.Time {
	return utils.CivilDate(s.now())
}

// DueToday returns the habits due on the scheduler's current date.
func (s *Scheduler) DueToday(habits []models.Habit) []models.Habit {
	return DueHabits(habits, s.Today())
}

// IsDue reports whether the habit is scheduled on day's weekday.
func IsDue(h models.Habit, day time.Time) bool {
	return h.Frequency.Has(day.Weekday())
}

// IsDueOn is IsDue for a date key. A malformed key is never due.
func IsDueOn(h models.Habit, key string) bool {
	day, err := utils.ParseDateKey(key)
	if err != nil {
		return false
	}
	return IsDue(h, day)
}

// DueHabits returns the habits due on day, preserving input order.
func DueHabits(habits []models.Habit, day time.Time) []models.Habit {
	due := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if IsDue(h, day) {
			due = append(due, h)
		}
	}
	return due
}

var dayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekdays parses a comma-separated list of weekdays into a frequency
// mask. Names, abbreviations, indices (0=Sunday) and the shorthands "daily",
// "weekdays" and "weekends" are accepted.
func ParseWeekdays(s string) (models.Frequency, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "daily", "everyday", "every day":
		return models.FrequencyDaily, nil
	case "weekdays":
		return models.FrequencyWeekdays, nil
	case "weekends":
		return models.FrequencyWeekends, nil
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			days = append(days, int(wd))
			continue
		}
		// Try parsing as number (0=Sunday, 6=Saturday)
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return models.FrequencyNone, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, num)
	}

	f := models.NewFrequency(days...)
	if f.IsEmpty() {
		return models.FrequencyNone, fmt.Errorf("no weekdays given")
	}
	return f, nil
}

// FormatFrequency formats a frequency mask into a human-readable string
func FormatFrequency(f models.Frequency) string {
	switch f & models.FrequencyDaily {
	case models.FrequencyNone:
		return "never"
	case models.FrequencyDaily:
		return "daily"
	case models.FrequencyWeekdays:
		return "weekdays"
	case models.FrequencyWeekends:
		return "weekends"
	}

	var names []string
	for _, d := range f.Days() {
		names = append(names, time.Weekday(d).String()[:3])
	}
	return strings.Join(names, ",")
}
