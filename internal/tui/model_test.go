package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

var testNow = time.Date(2024, 6, 6, 9, 30, 0, 0, time.UTC)

func setupModel(t *testing.T, habits ...models.Habit) (Model, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	for _, h := range habits {
		if err := store.AddHabit(h); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}
	m := NewModel(store, scheduler.NewWithClock(func() time.Time { return testNow }))
	return send(m, tea.WindowSizeMsg{Width: 160, Height: 40}), store
}

func dailyHabit(id, title string) models.Habit {
	return models.Habit{
		ID:        id,
		Title:     title,
		Goal:      1,
		Unit:      "times",
		Frequency: models.FrequencyDaily,
		Type:      models.HabitTypeCheck,
		CreatedAt: testNow,
		Logs:      map[string]models.HabitLog{},
	}
}

// send delivers msg and then any message its command produces, the way the
// bubbletea runtime would for synchronous commands.
func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if out := cmd(); out != nil {
		if _, ok := out.(tea.QuitMsg); ok {
			return m
		}
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelLoadsHabits(t *testing.T) {
	m, _ := setupModel(t, dailyHabit("a", "Walk"), dailyHabit("b", "Read"))
	if len(m.habits) != 2 {
		t.Fatalf("loaded %d habits, want 2", len(m.habits))
	}
	if m.state != constants.StateToday {
		t.Errorf("initial state = %v, want today", m.state)
	}
	if m.profile.Name != constants.DefaultUserName {
		t.Errorf("profile = %q, want default", m.profile.Name)
	}
}

func TestToggleKeyPersistsCompletion(t *testing.T) {
	m, store := setupModel(t, dailyHabit("a", "Walk"))

	m = send(m, keyRunes(" "))

	h, err := store.GetHabit("a")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	l := h.Logs["2024-06-06"]
	if !l.Completed || l.Value != 1 {
		t.Errorf("log after toggle = %+v, want completed with value 1", l)
	}

	m = send(m, keyRunes(" "))
	h, _ = store.GetHabit("a")
	if h.Logs["2024-06-06"].Completed {
		t.Error("second toggle should clear the completion")
	}
}

func TestDayNavigation(t *testing.T) {
	m, store := setupModel(t, dailyHabit("a", "Walk"))

	m = send(m, keyRunes("["))
	if got := m.day.Format(constants.DateFormat); got != "2024-06-05" {
		t.Fatalf("day after '[' = %s, want 2024-06-05", got)
	}

	m = send(m, keyRunes("x"))
	h, _ := store.GetHabit("a")
	if !h.Logs["2024-06-05"].Completed {
		t.Error("toggle should apply to the selected day")
	}

	m = send(m, keyRunes("t"))
	if got := m.day.Format(constants.DateFormat); got != "2024-06-06" {
		t.Errorf("day after 't' = %s, want 2024-06-06", got)
	}
	if !strings.Contains(m.View(), "Today's Habits") {
		t.Error("view should show today's heading")
	}
}

func TestTodayListsOnlyDueHabits(t *testing.T) {
	weekend := dailyHabit("w", "Long run")
	weekend.Frequency = models.FrequencyWeekends
	m, _ := setupModel(t, dailyHabit("a", "Walk"), weekend)

	view := m.View()
	if !strings.Contains(view, "Walk") {
		t.Error("daily habit missing from Thursday's list")
	}
	if strings.Contains(view, "Long run") {
		t.Error("weekend habit should not be listed on a Thursday")
	}
	if !strings.Contains(view, "0/1 done") {
		t.Errorf("progress line missing from view:\n%s", view)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m, _ := setupModel(t)

	want := []constants.SessionState{constants.StateCalendar, constants.StateAnalytics, constants.StateToday}
	for _, s := range want {
		m = send(m, tea.KeyMsg{Type: tea.KeyTab})
		if m.state != s {
			t.Fatalf("state = %v, want %v", m.state, s)
		}
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != constants.StateAnalytics {
		t.Errorf("shift+tab state = %v, want analytics", m.state)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	m, store := setupModel(t, dailyHabit("a", "Walk"))

	m = send(m, keyRunes("d"))
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.state)
	}

	m = send(m, keyRunes("n"))
	if m.state != constants.StateToday {
		t.Fatalf("state after 'n' = %v, want today", m.state)
	}
	if _, err := store.GetHabit("a"); err != nil {
		t.Fatal("habit should survive a declined delete")
	}

	m = send(m, keyRunes("d"))
	m = send(m, keyRunes("y"))
	if _, err := store.GetHabit("a"); err == nil {
		t.Error("habit should be deleted after confirming")
	}
	if len(m.habits) != 0 {
		t.Errorf("model still lists %d habits", len(m.habits))
	}
}

func TestAddHabitFormOpensAndCancels(t *testing.T) {
	m, _ := setupModel(t)

	m = send(m, keyRunes("a"))
	if m.state != constants.StateAddHabit || m.form == nil {
		t.Fatalf("state = %v, want add habit with a form", m.state)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != constants.StateToday || m.form != nil {
		t.Errorf("esc should close the form, state = %v", m.state)
	}
}

func TestBuildHabit(t *testing.T) {
	existing := []models.Habit{dailyHabit("a", "Walk")}

	tests := []struct {
		name    string
		form    HabitFormModel
		wantErr bool
	}{
		{"valid", HabitFormModel{Title: " Read ", Goal: "20", Type: models.HabitTypeCount, Days: []int{1, 3, 5}}, false},
		{"duplicate title", HabitFormModel{Title: "walk", Goal: "1", Type: models.HabitTypeCheck, Days: []int{0}}, true},
		{"bad goal", HabitFormModel{Title: "Read", Goal: "lots", Type: models.HabitTypeCheck, Days: []int{0}}, true},
		{"zero goal", HabitFormModel{Title: "Read", Goal: "0", Type: models.HabitTypeCheck, Days: []int{0}}, true},
		{"no days", HabitFormModel{Title: "Read", Goal: "1", Type: models.HabitTypeCheck}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := buildHabit(&tt.form, existing, testNow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildHabit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if h.Title != "Read" || h.Unit != constants.DefaultHabitUnit || h.Frequency != models.NewFrequency(1, 3, 5) {
				t.Errorf("buildHabit() = %+v", h)
			}
		})
	}
}

func TestQuit(t *testing.T) {
	m, _ := setupModel(t)
	next, cmd := m.Update(keyRunes("q"))
	if !next.(Model).quitting || cmd == nil {
		t.Error("q should quit")
	}
}
