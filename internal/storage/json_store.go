package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
)

// Store is the on-disk layout of a JSON store.
type Store struct {
	Version int            `json:"version"`
	Profile models.Profile `json:"profile"`
	Habits  []models.Habit `json:"habits"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Re-running init keeps existing data
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.store = &Store{
		Version: constants.SnapshotVersion,
		Profile: models.DefaultProfile(),
		Habits:  []models.Habit{},
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if s.store.Version > constants.SnapshotVersion {
		return fmt.Errorf("storage version %d is newer than supported version %d", s.store.Version, constants.SnapshotVersion)
	}

	// Ensure maps are initialized
	for i := range s.store.Habits {
		if s.store.Habits[i].Logs == nil {
			s.store.Habits[i].Logs = map[string]models.HabitLog{}
		}
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes to a temporary file and renames it over the store so a crash
// never leaves a half-written file behind.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) loaded() error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) LoadSnapshot() (models.Snapshot, error) {
	if err := s.loaded(); err != nil {
		return models.Snapshot{}, err
	}
	habits, err := s.GetAllHabits()
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Habits: habits, Profile: s.store.Profile}, nil
}

func (s *JSONStore) SaveSnapshot(snap models.Snapshot) error {
	if err := s.loaded(); err != nil {
		return err
	}
	habits := make([]models.Habit, len(snap.Habits))
	for i, h := range snap.Habits {
		habits[i] = h.Clone()
	}
	s.store.Habits = habits
	s.store.Profile = snap.Profile
	return s.save()
}

func (s *JSONStore) indexOf(id string) int {
	for i, h := range s.store.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *JSONStore) AddHabit(habit models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if s.indexOf(habit.ID) >= 0 {
		return fmt.Errorf("habit %s already exists", habit.ID)
	}
	for _, h := range s.store.Habits {
		if strings.EqualFold(h.Title, habit.Title) {
			return fmt.Errorf("habit with title %q already exists", habit.Title)
		}
	}

	s.store.Habits = append(s.store.Habits, habit.Clone())
	return s.save()
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return s.store.Habits[i].Clone(), nil
}

func (s *JSONStore) GetHabitByTitle(title string) (models.Habit, error) {
	if err := s.loaded(); err != nil {
		return models.Habit{}, err
	}
	for _, h := range s.store.Habits {
		if strings.EqualFold(h.Title, title) {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", title, ErrNotFound)
}

func (s *JSONStore) GetAllHabits() ([]models.Habit, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	habits := make([]models.Habit, len(s.store.Habits))
	for i, h := range s.store.Habits {
		habits[i] = h.Clone()
	}
	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID < habits[j].ID
		}
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (s *JSONStore) UpdateHabit(habit models.Habit) error {
	if err := s.loaded(); err != nil {
		return err
	}
	i := s.indexOf(habit.ID)
	if i < 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, ErrNotFound)
	}
	s.store.Habits[i] = habit.Clone()
	return s.save()
}

func (s *JSONStore) DeleteHabit(id string) error {
	if err := s.loaded(); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	s.store.Habits = append(s.store.Habits[:i], s.store.Habits[i+1:]...)
	return s.save()
}

func (s *JSONStore) GetProfile() (models.Profile, error) {
	if err := s.loaded(); err != nil {
		return models.Profile{}, err
	}
	return s.store.Profile, nil
}

func (s *JSONStore) SaveProfile(p models.Profile) error {
	if err := s.loaded(); err != nil {
		return err
	}
	s.store.Profile = p
	return s.save()
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
