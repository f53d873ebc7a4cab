package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitpulse/internal/constants"
)

// DefaultProfile returns the profile used before the user customizes it.
func DefaultProfile() Profile {
	return Profile{
		Name:   constants.DefaultUserName,
		Avatar: constants.Avatars[0],
	}
}

// DefaultHabits returns the starter habits seeded into a fresh store.
func DefaultHabits(now time.Time) []Habit {
	return []Habit{
		{
			ID:        uuid.New().String(),
			Title:     "Morning Walk",
			Goal:      4000,
			Unit:      "steps",
			Frequency: FrequencyDaily,
			Type:      HabitTypeCount,
			Color:     "yellow",
			Icon:      "footprints",
			CreatedAt: now,
			Logs:      map[string]HabitLog{},
		},
		{
			ID:        uuid.New().String(),
			Title:     "Read Wisdom",
			Goal:      30,
			Unit:      "mins",
			Frequency: FrequencyDaily,
			Type:      HabitTypeTime,
			Color:     "purple",
			Icon:      "book",
			CreatedAt: now,
			Logs:      map[string]HabitLog{},
		},
	}
}
