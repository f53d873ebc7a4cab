package tracker

import (
	"errors"
	"testing"

	"github.com/julianstephens/habitpulse/internal/models"
)

const day = "2024-06-05"

func newHabit() models.Habit {
	return models.Habit{
		ID:        "h1",
		Title:     "Read",
		Goal:      30,
		Frequency: models.FrequencyDaily,
		Logs:      map[string]models.HabitLog{},
	}
}

func TestToggleCompletionOnAndOff(t *testing.T) {
	h := newHabit()

	on := ToggleCompletion(h, day)
	l := on.Logs[day]
	if !l.Completed || l.Value != 30 || l.Date != day {
		t.Fatalf("toggle on = %+v, want completed with goal value", l)
	}

	off := ToggleCompletion(on, day)
	l = off.Logs[day]
	if l.Completed || l.Value != 0 {
		t.Errorf("toggle off = %+v, want not completed with value 0", l)
	}
}

func TestToggleCompletionDoesNotMutateInput(t *testing.T) {
	h := newHabit()
	_ = ToggleCompletion(h, day)
	if len(h.Logs) != 0 {
		t.Errorf("input habit mutated: %v", h.Logs)
	}

	h.Logs = nil
	out := ToggleCompletion(h, day)
	if h.Logs != nil {
		t.Error("nil log map on input should stay nil")
	}
	if !out.CompletedOn(day) {
		t.Error("toggle on a habit with nil logs should complete the day")
	}
}

func TestDoubleToggleRestoresStateAndKeepsNote(t *testing.T) {
	h := SetNote(newHabit(), day, "tired")
	original := h.Logs[day]

	once := ToggleCompletion(h, day)
	if once.Logs[day].Note != "tired" {
		t.Errorf("note lost after first toggle: %+v", once.Logs[day])
	}

	twice := ToggleCompletion(once, day)
	got := twice.Logs[day]
	if got.Completed != original.Completed || got.Value != original.Value {
		t.Errorf("double toggle = %+v, want %+v", got, original)
	}
	if got.Note != "tired" {
		t.Errorf("note lost after second toggle: %+v", got)
	}
}

func TestSetNoteCreatesIncompleteLog(t *testing.T) {
	h := SetNote(newHabit(), day, "rainy")
	l, ok := h.Log(day)
	if !ok {
		t.Fatal("expected log to be created")
	}
	if l.Completed || l.Value != 0 || l.Note != "rainy" {
		t.Errorf("SetNote on empty day = %+v", l)
	}
}

func TestSetNoteThenTogglePreservesNote(t *testing.T) {
	h := ToggleCompletion(SetNote(newHabit(), day, "note first"), day)
	l := h.Logs[day]
	if !l.Completed || l.Note != "note first" {
		t.Errorf("got %+v, want completed with note", l)
	}
}

func TestToggleThenSetNotePreservesCompletion(t *testing.T) {
	h := SetNote(ToggleCompletion(newHabit(), day), day, "done early")
	l := h.Logs[day]
	if !l.Completed || l.Value != 30 || l.Note != "done early" {
		t.Errorf("got %+v, want completed value 30 with note", l)
	}

	h = SetNote(h, day, "overwritten")
	if h.Logs[day].Note != "overwritten" || !h.Logs[day].Completed {
		t.Errorf("overwrite = %+v", h.Logs[day])
	}
}

func TestSnapshotReducers(t *testing.T) {
	s := models.Snapshot{Profile: models.Profile{Name: "Alex"}}

	s, err := Add(s, models.Habit{ID: "a", Goal: 1, Frequency: models.FrequencyDaily})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if s.Habits[0].Logs == nil {
		t.Error("Add should initialize logs")
	}
	if _, err := Add(s, models.Habit{ID: "a"}); err == nil {
		t.Error("expected duplicate ID error")
	}

	before := s
	s2, err := Toggle(s, "a", day)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !s2.Habits[0].CompletedOn(day) {
		t.Error("Toggle did not complete the day")
	}
	if before.Habits[0].CompletedOn(day) {
		t.Error("Toggle mutated the previous snapshot")
	}

	s3, err := Note(s2, "a", day, "hi")
	if err != nil {
		t.Fatalf("Note failed: %v", err)
	}
	if s3.Habits[0].Logs[day].Note != "hi" || !s3.Habits[0].Logs[day].Completed {
		t.Errorf("Note result = %+v", s3.Habits[0].Logs[day])
	}

	edited := s3.Habits[0]
	edited.Title = "Renamed"
	s4, err := Replace(s3, edited)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if s4.Habits[0].Title != "Renamed" || s3.Habits[0].Title == "Renamed" {
		t.Error("Replace should only affect the new snapshot")
	}

	s5, err := Remove(s4, "a")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(s5.Habits) != 0 || len(s4.Habits) != 1 {
		t.Errorf("Remove: new=%d old=%d habits", len(s5.Habits), len(s4.Habits))
	}
	if s5.Profile.Name != "Alex" {
		t.Error("profile should carry over")
	}
}

func TestReducersUnknownHabit(t *testing.T) {
	s := models.Snapshot{}
	if _, err := Toggle(s, "missing", day); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Toggle error = %v, want ErrHabitNotFound", err)
	}
	if _, err := Note(s, "missing", day, "x"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Note error = %v, want ErrHabitNotFound", err)
	}
	if _, err := Remove(s, "missing"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("Remove error = %v, want ErrHabitNotFound", err)
	}
}
