package backups

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage/postgres"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	tempDir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(tempDir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store, Scheduler: scheduler.New(), LockDir: tempDir}
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx := setupTestDB(t)

	habit := models.Habit{
		ID: "h1", Title: "Read", Goal: 1, Unit: "times", Type: models.HabitTypeCheck,
		Frequency: models.FrequencyDaily, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}

	mgr, err := manager(ctx)
	if err != nil {
		t.Fatal(err)
	}
	list, err := mgr.ListBackups()
	if err != nil || len(list) != 1 {
		t.Fatalf("ListBackups = %v, %v; want one backup", list, err)
	}

	if err := ctx.Store.DeleteHabit("h1"); err != nil {
		t.Fatal(err)
	}

	restore := BackupRestoreCmd{BackupFile: filepath.Base(list[0].Path), Yes: true}
	if err := restore.Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	if _, err := ctx.Store.GetHabit("h1"); err != nil {
		t.Errorf("habit missing after restore: %v", err)
	}
}

func TestRestoreMissingBackup(t *testing.T) {
	ctx := setupTestDB(t)
	err := (&BackupRestoreCmd{BackupFile: "habitpulse-20000101-0000.db", Yes: true}).Run(ctx)
	if err == nil {
		t.Error("expected error for a missing backup file")
	}
}

func TestPostgresBackupsRejected(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://localhost:5432/habits"), Scheduler: scheduler.New()}
	if _, err := manager(ctx); !errors.Is(err, errPostgresBackups) {
		t.Errorf("manager error = %v, want errPostgresBackups", err)
	}
}
