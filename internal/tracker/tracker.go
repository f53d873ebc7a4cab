// Package tracker implements the log mutations as pure transforms: each
// function takes a habit (or snapshot) and returns an updated copy, leaving
// its input untouched. Callers persist the result.
package tracker

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitpulse/internal/models"
)

var ErrHabitNotFound = errors.New("habit not found")

// ToggleCompletion flips the completed flag for day. Turning a day on records
// the habit's goal as the value; turning it off resets the value to 0. Any
// existing note is kept.
func ToggleCompletion(h models.Habit, day string) models.Habit {
	out := h.Clone()
	current, _ := h.Log(day)

	next := models.HabitLog{
		Date:      day,
		Completed: !current.Completed,
		Note:      current.Note,
	}
	if next.Completed {
		next.Value = h.Goal
	}

	out.Logs[day] = next
	return out
}

// SetNote sets or overwrites the note for day, creating an incomplete log when
// none exists. Completion state and value are kept.
func SetNote(h models.Habit, day, note string) models.Habit {
	out := h.Clone()
	current, _ := h.Log(day)
	current.Date = day
	current.Note = note
	out.Logs[day] = current
	return out
}

// Toggle applies ToggleCompletion to the habit with the given ID and returns
// the new snapshot.
func Toggle(s models.Snapshot, habitID, day string) (models.Snapshot, error) {
	return apply(s, habitID, func(h models.Habit) models.Habit {
		return ToggleCompletion(h, day)
	})
}

// Note applies SetNote to the habit with the given ID and returns the new
// snapshot.
func Note(s models.Snapshot, habitID, day, note string) (models.Snapshot, error) {
	return apply(s, habitID, func(h models.Habit) models.Habit {
		return SetNote(h, day, note)
	})
}

// Add appends a habit to the snapshot. An empty log map is initialized.
func Add(s models.Snapshot, h models.Habit) (models.Snapshot, error) {
	if s.FindHabit(h.ID) >= 0 {
		return s, fmt.Errorf("habit %s already exists", h.ID)
	}
	if h.Logs == nil {
		h.Logs = map[string]models.HabitLog{}
	}
	out := copySnapshot(s)
	out.Habits = append(out.Habits, h)
	return out, nil
}

// Replace swaps in an edited habit, matched by ID.
func Replace(s models.Snapshot, h models.Habit) (models.Snapshot, error) {
	return apply(s, h.ID, func(models.Habit) models.Habit {
		return h
	})
}

// Remove drops the habit and all of its logs from the snapshot.
func Remove(s models.Snapshot, habitID string) (models.Snapshot, error) {
	idx := s.FindHabit(habitID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
	}
	out := models.Snapshot{Profile: s.Profile, Habits: make([]models.Habit, 0, len(s.Habits)-1)}
	out.Habits = append(out.Habits, s.Habits[:idx]...)
	out.Habits = append(out.Habits, s.Habits[idx+1:]...)
	return out, nil
}

func apply(s models.Snapshot, habitID string, fn func(models.Habit) models.Habit) (models.Snapshot, error) {
	idx := s.FindHabit(habitID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
	}
	out := copySnapshot(s)
	out.Habits[idx] = fn(s.Habits[idx])
	return out, nil
}

func copySnapshot(s models.Snapshot) models.Snapshot {
	habits := make([]models.Habit, len(s.Habits), len(s.Habits)+1)
	copy(habits, s.Habits)
	return models.Snapshot{Habits: habits, Profile: s.Profile}
}
