package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitpulse/internal/backup"
	"github.com/julianstephens/habitpulse/internal/config"
	"github.com/julianstephens/habitpulse/internal/lock"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	// LockDir holds the lockfile. When empty it is derived from the store's
	// config path.
	LockDir string
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if config.Detect(c.Store.GetConfigPath()) == config.BackendPostgres {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) lockDir() (string, error) {
	if c.LockDir != "" {
		return c.LockDir, nil
	}
	return config.Dir(c.Store.GetConfigPath())
}

// WithLock runs fn while holding the store's write lock.
func (c *Context) WithLock(fn func() error) error {
	dir, err := c.lockDir()
	if err != nil {
		return err
	}
	l, err := lock.Acquire(dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lock", "error", err)
		}
	}()
	return fn()
}

// Today returns today's civil date per the context's scheduler.
func (c *Context) Today() time.Time {
	if c.Scheduler == nil {
		return utils.CivilDate(time.Now())
	}
	return c.Scheduler.Today()
}

// ResolveDate parses a YYYY-MM-DD flag value, or "today"/"" for today.
func (c *Context) ResolveDate(value string) (time.Time, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch v {
	case "", "today":
		return c.Today(), nil
	case "yesterday":
		return utils.AddDays(c.Today(), -1), nil
	}
	d, err := utils.ParseDateKey(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD, 'today' or 'yesterday')", value)
	}
	return d, nil
}

// ResolveHabit finds a habit by ID, then by case-insensitive title.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	h, err := c.Store.GetHabit(ref)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}

	h, err = c.Store.GetHabitByTitle(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	}
	return h, err
}

// LoadHabits loads the store and returns every habit in creation order.
func (c *Context) LoadHabits() ([]models.Habit, error) {
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	return c.Store.GetAllHabits()
}

// FormatValue renders a goal or log value without a trailing ".0".
func FormatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
