package storage

import (
	"errors"

	"github.com/julianstephens/habitpulse/internal/models"
)

// ErrNotFound is returned when a habit lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ErrNotInitialized is returned by Load when the store has never been created.
var ErrNotInitialized = errors.New("storage not initialized, run 'habitpulse init' first")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Snapshot is the whole state handed to the engine.
	LoadSnapshot() (models.Snapshot, error)
	// SaveSnapshot replaces every habit, log and the profile in one step.
	SaveSnapshot(models.Snapshot) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByTitle(title string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	// UpdateHabit rewrites the habit row and replaces its logs atomically.
	UpdateHabit(models.Habit) error
	// DeleteHabit removes the habit and all of its logs.
	DeleteHabit(id string) error

	// Profile
	GetProfile() (models.Profile, error)
	SaveProfile(models.Profile) error

	// Utils
	GetConfigPath() string
}
