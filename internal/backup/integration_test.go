package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

func sampleHabit(id, title string) models.Habit {
	return models.Habit{
		ID:        id,
		Title:     title,
		Goal:      1,
		Unit:      "times",
		Type:      models.HabitTypeCheck,
		Frequency: models.FrequencyDaily,
		CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Logs: map[string]models.HabitLog{
			"2024-06-03": {Date: "2024-06-03", Value: 1, Completed: true},
		},
	}
}

func TestIntegrationSQLiteBackupRestoreWorkflow(t *testing.T) {
	withClock(t, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))
	dbPath := filepath.Join(t.TempDir(), "habitpulse.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddHabit(sampleHabit("h1", "Read")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	store.Close()

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := store.AddHabit(sampleHabit("h2", "Walk")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	store.Close()

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	store = sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	defer store.Close()

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(habits) != 1 || habits[0].ID != "h1" {
		t.Fatalf("habits after restore = %v, want only h1", habits)
	}
	if !habits[0].CompletedOn("2024-06-03") {
		t.Error("restored habit lost its log")
	}
}

func TestIntegrationJSONBackupRestoreWorkflow(t *testing.T) {
	withClock(t, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))
	path := filepath.Join(t.TempDir(), "habits.json")

	store := storage.NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddHabit(sampleHabit("h1", "Read")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	mgr := NewManager(path)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(backupPath) != ".json" {
		t.Errorf("backup %s should keep the .json extension", backupPath)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	if _, err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	reloaded := storage.NewJSONStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	if _, err := reloaded.GetHabit("h1"); err != nil {
		t.Errorf("GetHabit after restore: %v", err)
	}
}

func TestJSONBackupRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habits.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(path).CreateBackup(); err == nil {
		t.Error("expected error backing up a corrupt JSON store")
	}
}
