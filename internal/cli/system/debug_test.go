package system

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

func setupTestDebugDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{
		Store:     store,
		Scheduler: scheduler.NewWithClock(func() time.Time { return initNow }),
		LockDir:   tempDir,
	}

	cleanup := func() {
		store.Close()
	}

	return ctx, cleanup
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpHabitCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	h := addTestHabit(t, ctx, "Meditate", map[string]models.HabitLog{
		"2024-06-05": {Date: "2024-06-05", Value: 1, Completed: true},
	})

	tests := []struct {
		name    string
		ref     string
		wantErr string
	}{
		{"by id", h.ID, ""},
		{"by title", "meditate", ""},
		{"missing", "nonexistent-id", "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&DebugDumpHabitCmd{Habit: tt.ref}).Run(ctx)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("dump-habit failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("dump-habit error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestDebugDumpDayCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	addTestHabit(t, ctx, "Run", nil)

	if err := (&DebugDumpDayCmd{Date: "today"}).Run(ctx); err != nil {
		t.Errorf("dump-day today failed: %v", err)
	}
	if err := (&DebugDumpDayCmd{Date: "2024-02-29"}).Run(ctx); err != nil {
		t.Errorf("dump-day leap day failed: %v", err)
	}

	err := (&DebugDumpDayCmd{Date: "invalid-date"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Errorf("expected 'invalid date' error, got: %v", err)
	}
}

func TestDebugDumpSnapshotCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	addTestHabit(t, ctx, "Write", nil)
	if err := (&DebugDumpSnapshotCmd{}).Run(ctx); err != nil {
		t.Errorf("dump-snapshot failed: %v", err)
	}
}

func TestDebugDumpSnapshotCmd_Uninitialized(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	ctx := &cli.Context{Store: store, Scheduler: scheduler.New()}

	if err := (&DebugDumpSnapshotCmd{}).Run(ctx); err == nil {
		t.Error("dump-snapshot should fail before init")
	}
}
