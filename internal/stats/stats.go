package stats

import (
	"math"
	"time"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/utils"
)

// HabitStats holds the derived numbers for a single habit.
type HabitStats struct {
	Streak         int `json:"streak"`
	TotalCompleted int `json:"totalCompleted"`
	CompletionRate int `json:"completionRate"`
}

// Compute derives a habit's statistics as of the given date. Nothing is
// cached; every call walks the logs again.
func Compute(h models.Habit, asOf time.Time) HabitStats {
	total := TotalCompleted(h)
	return HabitStats{
		Streak:         Streak(h, asOf),
		TotalCompleted: total,
		CompletionRate: CompletionRate(total),
	}
}

// TotalCompleted counts completed logs, with no time bound.
func TotalCompleted(h models.Habit) int {
	n := 0
	for _, l := range h.Logs {
		if l.Completed {
			n++
		}
	}
	return n
}

// Streak counts completed days walking backward from asOf. An unfinished asOf
// is skipped rather than treated as a miss, rest days are skipped, and the
// first missed due day ends the walk. The walk covers at most
// constants.StreakLookbackDays days, so longer streaks report that cap.
// CreatedAt is not consulted.
func Streak(h models.Habit, asOf time.Time) int {
	start := utils.CivilDate(asOf)
	streak := 0

	for i := 0; i < constants.StreakLookbackDays; i++ {
		day := utils.AddDays(start, -i)
		if h.CompletedOn(utils.DateKey(day)) {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		if scheduler.IsDue(h, day) {
			break
		}
	}

	return streak
}

// CompletionRate is round(total / 30 * 100). The denominator is a fixed
// 30-day window regardless of how many days were actually due, so the result
// can exceed 100.
func CompletionRate(totalCompleted int) int {
	return Percent(totalCompleted, constants.CompletionRateWindowDays)
}

// Percent returns round(part/whole*100), or 0 when whole is not positive.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// History returns completion flags for the n days ending at asOf, oldest first.
func History(h models.Habit, asOf time.Time, n int) []bool {
	days := utils.DateRange(asOf, n)
	out := make([]bool, len(days))
	for i, d := range days {
		out[i] = h.CompletedOn(utils.DateKey(d))
	}
	return out
}

// Overview aggregates lifetime totals across all habits.
type Overview struct {
	TotalHabits    int
	TotalLogs      int
	TotalCompleted int
	// CompletionRate is completed logs over all logs, including note-only logs.
	CompletionRate int
	WeekdayCounts  [7]int
	// BestWeekday is the weekday with the most completions; HasBestWeekday is
	// false when nothing has been completed.
	BestWeekday    time.Weekday
	HasBestWeekday bool
}

// Summarize builds the lifetime overview for a set of habits.
func Summarize(habits []models.Habit) Overview {
	o := Overview{TotalHabits: len(habits)}

	for _, h := range habits {
		o.TotalLogs += len(h.Logs)
		for key, l := range h.Logs {
			if !l.Completed {
				continue
			}
			o.TotalCompleted++
			if wd, err := utils.Weekday(key); err == nil {
				o.WeekdayCounts[wd]++
			}
		}
	}

	o.CompletionRate = Percent(o.TotalCompleted, o.TotalLogs)

	best := 0
	for wd, count := range o.WeekdayCounts {
		if count > best {
			best = count
			o.BestWeekday = time.Weekday(wd)
			o.HasBestWeekday = true
		}
	}

	return o
}
