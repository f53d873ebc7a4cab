package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/config"
	"github.com/julianstephens/habitpulse/internal/models"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing data before initialization."`
	Empty  bool   `help:"Do not seed the starter habits."`
	Source string `help:"Store to copy habits and profile from (SQLite path, .json path, or PostgreSQL connection string)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	return ctx.WithLock(func() error { return c.run(ctx) })
}

func (c *InitCmd) run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitpulse storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
		return nil
	}

	if c.Empty {
		return nil
	}
	return seedDefaults(ctx)
}

// reset removes an existing file-backed store. The source of a --source copy
// is never deleted.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if config.Detect(dbPath) == config.BackendPostgres {
		return errors.New("--force is not supported for PostgreSQL; drop the habitpulse schema manually")
	}

	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		fmt.Printf("Deleted existing store at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

// seedDefaults adds the starter habits to a store that has none.
func seedDefaults(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if len(habits) > 0 {
		return nil
	}

	for _, h := range models.DefaultHabits(ctx.Scheduler.Now()) {
		if err := ctx.Store.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add starter habit %q: %w", h.Title, err)
		}
		fmt.Printf("  Added starter habit: %s\n", h.Title)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context, source string) error {
	src, err := cli.OpenStore(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	snap, err := src.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to read source store: %w", err)
	}

	if err := ctx.Store.SaveSnapshot(snap); err != nil {
		return fmt.Errorf("failed to write destination store: %w", err)
	}

	logs := 0
	for _, h := range snap.Habits {
		logs += len(h.Logs)
	}
	fmt.Printf("  Copied %d habits with %d logs\n", len(snap.Habits), logs)
	fmt.Printf("  Copied profile: %s\n", snap.Profile.Name)
	return nil
}
