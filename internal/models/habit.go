package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type HabitType string

const (
	HabitTypeCount HabitType = "count"
	HabitTypeCheck HabitType = "check"
	HabitTypeTime  HabitType = "time"
)

// Valid reports whether t is one of the known habit types.
func (t HabitType) Valid() bool {
	switch t {
	case HabitTypeCount, HabitTypeCheck, HabitTypeTime:
		return true
	}
	return false
}

// Frequency is a 7-bit weekday mask. Bit 0 is Sunday, bit 6 is Saturday.
type Frequency uint8

const (
	FrequencyNone     Frequency = 0
	FrequencyDaily    Frequency = 0x7f
	FrequencyWeekdays Frequency = 0x3e
	FrequencyWeekends Frequency = 0x41
)

// NewFrequency builds a mask from weekday indices. Indices outside [0,6] are
// ignored; use ParseFrequencyDays when they should be rejected.
func NewFrequency(days ...int) Frequency {
	var f Frequency
	for _, d := range days {
		if d >= 0 && d <= 6 {
			f |= 1 << uint(d)
		}
	}
	return f
}

// ParseFrequencyDays builds a mask from weekday indices, rejecting any index
// outside [0,6]. Duplicates collapse.
func ParseFrequencyDays(days []int) (Frequency, error) {
	for _, d := range days {
		if d < 0 || d > 6 {
			return FrequencyNone, fmt.Errorf("invalid weekday index %d (expected 0-6)", d)
		}
	}
	return NewFrequency(days...), nil
}

// Has reports whether wd is a scheduled weekday.
func (f Frequency) Has(wd time.Weekday) bool {
	if wd < time.Sunday || wd > time.Saturday {
		return false
	}
	return f&(1<<uint(wd)) != 0
}

func (f Frequency) IsEmpty() bool {
	return f&FrequencyDaily == 0
}

// Days returns the scheduled weekday indices in ascending order.
func (f Frequency) Days() []int {
	days := make([]int, 0, 7)
	for d := 0; d <= 6; d++ {
		if f&(1<<uint(d)) != 0 {
			days = append(days, d)
		}
	}
	return days
}

func (f Frequency) Count() int {
	return len(f.Days())
}

// MarshalJSON encodes the mask as a sorted array of weekday indices.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Days())
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return fmt.Errorf("frequency must be an array of weekday indices: %w", err)
	}
	parsed, err := ParseFrequencyDays(days)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// HabitLog is a single day's record for a habit
type HabitLog struct {
	Date      string  `json:"date"` // YYYY-MM-DD format
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
	Note      string  `json:"note,omitempty"`
}

// HasNote reports whether the log carries a non-blank note.
func (l HabitLog) HasNote() bool {
	return strings.TrimSpace(l.Note) != ""
}

// Habit represents a recurring practice to track
type Habit struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Goal        float64             `json:"goal"`
	Unit        string              `json:"unit"`
	Frequency   Frequency           `json:"frequency"`
	Type        HabitType           `json:"type"`
	Color       string              `json:"color"`
	Icon        string              `json:"icon"`
	CreatedAt   time.Time           `json:"createdAt"`
	Logs        map[string]HabitLog `json:"logs"`
}

// Log returns the log for the given date key. A missing entry is reported as
// the zero log for that day: not completed, no value, no note.
func (h Habit) Log(day string) (HabitLog, bool) {
	l, ok := h.Logs[day]
	if !ok {
		return HabitLog{Date: day}, false
	}
	return l, true
}

// CompletedOn reports whether the habit was completed on the given date key.
func (h Habit) CompletedOn(day string) bool {
	return h.Logs[day].Completed
}

// Clone returns a copy of h whose log map can be modified without affecting h.
func (h Habit) Clone() Habit {
	c := h
	c.Logs = make(map[string]HabitLog, len(h.Logs))
	for k, v := range h.Logs {
		c.Logs[k] = v
	}
	return c
}

// SortedLogs returns the habit's logs ordered by date.
func (h Habit) SortedLogs() []HabitLog {
	logs := make([]HabitLog, 0, len(h.Logs))
	for _, l := range h.Logs {
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Date < logs[j].Date
	})
	return logs
}
