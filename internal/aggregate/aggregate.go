// Package aggregate builds cross-habit views for a day, a run of days, or a
// calendar month. Every view is derived from the scheduling predicate and
// per-date log lookups only.
package aggregate

import (
	"math"
	"time"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/utils"
)

// DaySummary is the due/done tally for one date.
type DaySummary struct {
	Date            string `json:"date"`
	DueCount        int    `json:"dueCount"`
	DoneCount       int    `json:"doneCount"`
	ProgressPercent int    `json:"progressPercent"`
}

// Daily tallies the habits due on day and how many of those are completed.
// Completions on a day the habit is not due are not counted.
func Daily(habits []models.Habit, day time.Time) DaySummary {
	day = utils.CivilDate(day)
	key := utils.DateKey(day)

	s := DaySummary{Date: key}
	for _, h := range habits {
		if !scheduler.IsDue(h, day) {
			continue
		}
		s.DueCount++
		if h.CompletedOn(key) {
			s.DoneCount++
		}
	}
	s.ProgressPercent = stats.Percent(s.DoneCount, s.DueCount)
	return s
}

// WeekSeries is the per-day progress for consecutive dates plus the rounded
// mean of the daily percentages.
type WeekSeries struct {
	Days           []DaySummary `json:"days"`
	OverallPercent int          `json:"overallPercent"`
}

// Weekly returns the seven days ending at end.
func Weekly(habits []models.Habit, end time.Time) WeekSeries {
	return Series(habits, end, constants.WeekDays)
}

// Series returns n daily summaries ending at end, oldest first. Days with
// nothing due contribute 0 to the mean.
func Series(habits []models.Habit, end time.Time, n int) WeekSeries {
	days := utils.DateRange(end, n)
	out := WeekSeries{Days: make([]DaySummary, len(days))}
	if len(days) == 0 {
		return out
	}

	sum := 0
	for i, d := range days {
		out.Days[i] = Daily(habits, d)
		sum += out.Days[i].ProgressPercent
	}
	out.OverallPercent = int(math.Round(float64(sum) / float64(len(days))))
	return out
}

// StripDay is one cell of the scrolling date strip.
type StripDay struct {
	DaySummary
	Weekday time.Weekday `json:"weekday"`
	IsToday bool         `json:"isToday"`
}

// Strip returns the dates from before days ahead of today through after days
// past it, each with its summary.
func Strip(habits []models.Habit, today time.Time, before, after int) []StripDay {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	today = utils.CivilDate(today)

	out := make([]StripDay, 0, before+after+1)
	for i := -before; i <= after; i++ {
		d := utils.AddDays(today, i)
		out = append(out, StripDay{
			DaySummary: Daily(habits, d),
			Weekday:    d.Weekday(),
			IsToday:    i == 0,
		})
	}
	return out
}

// DayClass is the calendar classification of a day.
type DayClass int

const (
	DayNone DayClass = iota
	DayPartial
	DayPerfect
)

func (c DayClass) String() string {
	switch c {
	case DayPerfect:
		return "perfect"
	case DayPartial:
		return "partial"
	default:
		return "none"
	}
}

// MarshalText renders the class by name.
func (c DayClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Classify returns Perfect when every due habit was done, Partial when some
// were, and None when nothing was due or nothing was done.
func Classify(due, done int) DayClass {
	switch {
	case due <= 0 || done <= 0:
		return DayNone
	case done >= due:
		return DayPerfect
	default:
		return DayPartial
	}
}

// CalendarDay is one day of a month grid.
type CalendarDay struct {
	Day       int      `json:"day"`
	Date      string   `json:"date"`
	DueCount  int      `json:"dueCount"`
	DoneCount int      `json:"doneCount"`
	Class     DayClass `json:"class"`
}

// MonthCalendar is the grid for one month. FirstWeekday is the weekday of the
// 1st, i.e. the number of leading blank cells in a Sunday-first grid.
type MonthCalendar struct {
	Year         int           `json:"year"`
	Month        time.Month    `json:"month"`
	FirstWeekday time.Weekday  `json:"firstWeekday"`
	Days         []CalendarDay `json:"days"`
	PerfectDays  int           `json:"perfectDays"`
	PartialDays  int           `json:"partialDays"`
}

// Monthly classifies every day of the given month.
func Monthly(habits []models.Habit, year int, month time.Month) MonthCalendar {
	n := utils.DaysInMonth(year, month)
	cal := MonthCalendar{
		Year:         year,
		Month:        month,
		FirstWeekday: utils.FirstWeekdayOfMonth(year, month),
		Days:         make([]CalendarDay, 0, n),
	}

	for d := 1; d <= n; d++ {
		s := Daily(habits, time.Date(year, month, d, 0, 0, 0, 0, time.UTC))
		class := Classify(s.DueCount, s.DoneCount)
		switch class {
		case DayPerfect:
			cal.PerfectDays++
		case DayPartial:
			cal.PartialDays++
		}
		cal.Days = append(cal.Days, CalendarDay{
			Day:       d,
			Date:      s.Date,
			DueCount:  s.DueCount,
			DoneCount: s.DoneCount,
			Class:     class,
		})
	}

	return cal
}
