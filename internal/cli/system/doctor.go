package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitpulse/internal/backup"
	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/config"
	"github.com/julianstephens/habitpulse/internal/keyring"
	"github.com/julianstephens/habitpulse/internal/lock"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
	"github.com/julianstephens/habitpulse/internal/validation"
)

// errWarning marks a check result that is reported but does not fail doctor.
var errWarning = errors.New("warning")

type check struct {
	name string
	// needsStore checks are skipped when the store cannot be loaded.
	needsStore bool
	run        func(ctx *cli.Context) error
}

type DoctorCmd struct {
	Fix bool `help:"Repair problems that can be fixed automatically."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Store reachable", run: checkStoreReachable},
		{name: "Schema version", needsStore: true, run: checkSchemaVersion},
		{name: "Log integrity", needsStore: true, run: checkLogIntegrity},
		{name: "Habit data", needsStore: true, run: cmd.checkHabitData},
		{name: "Backups present", run: checkBackupsPresent},
		{name: "Write lock", run: checkLock},
		{name: "Keyring", run: checkKeyring},
		{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
	}

	hasError := false
	reachable := false
	for i, c := range checks {
		if c.needsStore && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errWarning):
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", errors.Unwrap(err))
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
		if i == 0 {
			reachable = err == nil
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func warn(format string, args ...any) error {
	return fmt.Errorf("%w: %w", errWarning, fmt.Errorf(format, args...))
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if _, err := ctx.Store.GetProfile(); err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'habitpulse migrate')", current, latest)
	}
	return nil
}

// checkLogIntegrity looks for SQLite rows that the foreign key and date
// format should have ruled out.
func checkLogIntegrity(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	db := store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var orphaned int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_logs l
		LEFT JOIN habits h ON l.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphaned)
	if err != nil {
		return fmt.Errorf("failed to check orphaned logs: %w", err)
	}
	if orphaned > 0 {
		return fmt.Errorf("found %d logs referencing non-existent habits", orphaned)
	}

	var badDates int
	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_logs
		WHERE day NOT GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]'
	`).Scan(&badDates)
	if err != nil {
		return fmt.Errorf("failed to check log dates: %w", err)
	}
	if badDates > 0 {
		return fmt.Errorf("found %d logs with invalid date format", badDates)
	}
	return nil
}

func (cmd *DoctorCmd) checkHabitData(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to read habits: %w", err)
	}

	result := validation.New().ValidateHabits(habits)
	if !result.HasConflicts() {
		return nil
	}
	if !cmd.Fix {
		return fmt.Errorf("%s(run 'habitpulse doctor --fix' to repair log dates)", result.FormatReport())
	}

	fixed, actions := validation.AutoFixLogDates(result.Conflicts, habits)
	if len(actions) > 0 {
		err := ctx.WithLock(func() error {
			return saveChanged(ctx, habits, fixed)
		})
		if err != nil {
			return fmt.Errorf("failed to save repairs: %w", err)
		}
		for _, a := range actions {
			fmt.Printf("   fixed: %s\n", a.Action)
		}
	}

	remaining := validation.New().ValidateHabits(fixed)
	if remaining.HasConflicts() {
		return fmt.Errorf("%s", remaining.FormatReport())
	}
	return nil
}

// saveChanged writes back the habits whose logs differ after a repair.
func saveChanged(ctx *cli.Context, before, after []models.Habit) error {
	for i := range after {
		if logsEqual(before[i].Logs, after[i].Logs) {
			continue
		}
		if err := ctx.Store.UpdateHabit(after[i]); err != nil {
			return err
		}
	}
	return nil
}

func logsEqual(a, b map[string]models.HabitLog) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if config.Detect(path) == config.BackendPostgres {
		return nil
	}
	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return warn("no backups found - consider creating one with 'habitpulse backup create'")
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	dir, err := config.Dir(ctx.Store.GetConfigPath())
	if ctx.LockDir != "" {
		dir, err = ctx.LockDir, nil
	}
	if err != nil {
		return err
	}
	owner, held, err := lock.Status(dir)
	if err != nil {
		return warn("unreadable lockfile %s: %v", lock.Path(dir), err)
	}
	if held {
		return warn("store is in use by %s (pid %d) since %s", owner.Executable, owner.PID, owner.AcquiredAt.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if config.Detect(ctx.Store.GetConfigPath()) != config.BackendPostgres {
		return nil
	}
	available, stored := keyring.Status()
	if !available {
		return warn("OS keyring is not available; use %s or .pgpass", "HABITPULSE_DB_CONNECTION")
	}
	if !stored {
		return warn("no connection string stored in the keyring")
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
