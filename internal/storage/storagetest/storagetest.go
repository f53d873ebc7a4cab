// Package storagetest holds a behavioral test suite shared by every
// storage.Provider implementation.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
)

// Factory returns a freshly initialized provider. The suite closes it.
type Factory func(t *testing.T) storage.Provider

func sampleHabit(id, title string) models.Habit {
	return models.Habit{
		ID:          id,
		Title:       title,
		Description: "test habit",
		Goal:        30,
		Unit:        "mins",
		Frequency:   models.NewFrequency(1, 3, 5),
		Type:        models.HabitTypeTime,
		Color:       "bg-rose-500",
		Icon:        "Book",
		CreatedAt:   time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
		Logs: map[string]models.HabitLog{
			"2024-06-03": {Date: "2024-06-03", Value: 30, Completed: true},
			"2024-06-05": {Date: "2024-06-05", Note: "rained"},
		},
	}
}

// Run exercises the full Provider contract against implementations built by
// newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AddAndGetHabit", func(t *testing.T) {
		s := open(t, newStore)
		h := sampleHabit("h1", "Read")
		if err := s.AddHabit(h); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}

		got, err := s.GetHabit("h1")
		if err != nil {
			t.Fatalf("GetHabit failed: %v", err)
		}
		assertHabitEqual(t, got, h)

		byTitle, err := s.GetHabitByTitle("Read")
		if err != nil {
			t.Fatalf("GetHabitByTitle failed: %v", err)
		}
		if byTitle.ID != "h1" {
			t.Errorf("GetHabitByTitle returned %s, want h1", byTitle.ID)
		}
	})

	t.Run("GetMissingHabit", func(t *testing.T) {
		s := open(t, newStore)
		if _, err := s.GetHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetHabit error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetHabitByTitle("nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetHabitByTitle error = %v, want ErrNotFound", err)
		}
	})

	t.Run("GetAllHabitsOrderedByCreation", func(t *testing.T) {
		s := open(t, newStore)
		later := sampleHabit("b", "Walk")
		later.CreatedAt = later.CreatedAt.Add(time.Hour)
		if err := s.AddHabit(later); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
		if err := s.AddHabit(sampleHabit("a", "Read")); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}

		all, err := s.GetAllHabits()
		if err != nil {
			t.Fatalf("GetAllHabits failed: %v", err)
		}
		if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
			t.Fatalf("GetAllHabits order = %v", habitIDs(all))
		}
		if len(all[1].Logs) != 2 {
			t.Errorf("logs not loaded: %v", all[1].Logs)
		}
	})

	t.Run("UpdateHabitReplacesLogs", func(t *testing.T) {
		s := open(t, newStore)
		h := sampleHabit("h1", "Read")
		if err := s.AddHabit(h); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}

		h.Title = "Read more"
		h.Frequency = models.FrequencyDaily
		h.Logs = map[string]models.HabitLog{
			"2024-06-06": {Date: "2024-06-06", Value: 30, Completed: true, Note: "fast"},
		}
		if err := s.UpdateHabit(h); err != nil {
			t.Fatalf("UpdateHabit failed: %v", err)
		}

		got, err := s.GetHabit("h1")
		if err != nil {
			t.Fatalf("GetHabit failed: %v", err)
		}
		assertHabitEqual(t, got, h)
	})

	t.Run("UpdateMissingHabit", func(t *testing.T) {
		s := open(t, newStore)
		if err := s.UpdateHabit(sampleHabit("ghost", "Ghost")); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateHabit error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteHabitDropsLogs", func(t *testing.T) {
		s := open(t, newStore)
		if err := s.AddHabit(sampleHabit("h1", "Read")); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
		if err := s.DeleteHabit("h1"); err != nil {
			t.Fatalf("DeleteHabit failed: %v", err)
		}
		if _, err := s.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetHabit after delete error = %v, want ErrNotFound", err)
		}

		// Re-adding the same ID must not resurrect old logs.
		fresh := sampleHabit("h1", "Read")
		fresh.Logs = map[string]models.HabitLog{}
		if err := s.AddHabit(fresh); err != nil {
			t.Fatalf("re-AddHabit failed: %v", err)
		}
		got, err := s.GetHabit("h1")
		if err != nil {
			t.Fatalf("GetHabit failed: %v", err)
		}
		if len(got.Logs) != 0 {
			t.Errorf("logs survived delete: %v", got.Logs)
		}

		if err := s.DeleteHabit("missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteHabit(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Profile", func(t *testing.T) {
		s := open(t, newStore)
		p, err := s.GetProfile()
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if p != models.DefaultProfile() {
			t.Errorf("initial profile = %+v, want default", p)
		}

		want := models.Profile{Name: "Sam", Avatar: "https://example.com/a.svg"}
		if err := s.SaveProfile(want); err != nil {
			t.Fatalf("SaveProfile failed: %v", err)
		}
		got, err := s.GetProfile()
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if got != want {
			t.Errorf("profile = %+v, want %+v", got, want)
		}
	})

	t.Run("SnapshotRoundTrip", func(t *testing.T) {
		s := open(t, newStore)
		if err := s.AddHabit(sampleHabit("old", "Old")); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}

		snap := models.Snapshot{
			Habits:  []models.Habit{sampleHabit("x", "Stretch")},
			Profile: models.Profile{Name: "Kai", Avatar: "a"},
		}
		if err := s.SaveSnapshot(snap); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}

		got, err := s.LoadSnapshot()
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(got.Habits) != 1 {
			t.Fatalf("snapshot habits = %v, want [x]", habitIDs(got.Habits))
		}
		assertHabitEqual(t, got.Habits[0], snap.Habits[0])
		if got.Profile != snap.Profile {
			t.Errorf("profile = %+v, want %+v", got.Profile, snap.Profile)
		}
	})
}

func open(t *testing.T, newStore Factory) storage.Provider {
	t.Helper()
	s := newStore(t)
	t.Cleanup(func() { s.Close() })
	return s
}

func assertHabitEqual(t *testing.T, got, want models.Habit) {
	t.Helper()
	if got.ID != want.ID || got.Title != want.Title || got.Description != want.Description ||
		got.Goal != want.Goal || got.Unit != want.Unit || got.Frequency != want.Frequency ||
		got.Type != want.Type || got.Color != want.Color || got.Icon != want.Icon {
		t.Errorf("habit fields = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if len(got.Logs) != len(want.Logs) {
		t.Fatalf("logs = %v, want %v", got.Logs, want.Logs)
	}
	for day, wl := range want.Logs {
		gl, ok := got.Logs[day]
		if !ok {
			t.Errorf("missing log %s", day)
			continue
		}
		if gl.Date != day || gl.Value != wl.Value || gl.Completed != wl.Completed || gl.Note != wl.Note {
			t.Errorf("log %s = %+v, want %+v", day, gl, wl)
		}
	}
}

func habitIDs(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.ID
	}
	return out
}
