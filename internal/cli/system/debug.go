package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/utils"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump habit data and derived stats as JSON."`
	DumpDay      *DebugDumpDayCmd      `cmd:"" help:"Dump the due/done evaluation of every habit for a date as JSON."`
	DumpSnapshot *DebugDumpSnapshotCmd `cmd:"" help:"Dump the whole store as JSON."`
}

func dumpJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return dumpJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"ID or title of the habit to dump."`
}

type habitDump struct {
	Habit     models.Habit     `json:"habit"`
	Frequency string           `json:"frequency"`
	Stats     stats.HabitStats `json:"stats"`
	AsOf      string           `json:"asOf"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	h, err := ctx.ResolveHabit(cmd.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	return dumpJSON(habitDump{
		Habit:     h,
		Frequency: scheduler.FormatFrequency(h.Frequency),
		Stats:     stats.Compute(h, today),
		AsOf:      utils.DateKey(today),
	})
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Date to evaluate (YYYY-MM-DD, 'today' or 'yesterday')." default:"today"`
}

type dayEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Due       bool   `json:"due"`
	Completed bool   `json:"completed"`
	Logged    bool   `json:"logged"`
}

type dayDump struct {
	Summary aggregate.DaySummary `json:"summary"`
	Habits  []dayEntry           `json:"habits"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}
	habits, err := ctx.LoadHabits()
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	key := utils.DateKey(day)
	out := dayDump{
		Summary: aggregate.Daily(habits, day),
		Habits:  make([]dayEntry, 0, len(habits)),
	}
	for _, h := range habits {
		_, logged := h.Logs[key]
		out.Habits = append(out.Habits, dayEntry{
			ID:        h.ID,
			Title:     h.Title,
			Due:       scheduler.IsDue(h, day),
			Completed: h.CompletedOn(key),
			Logged:    logged,
		})
	}
	return dumpJSON(out)
}

type DebugDumpSnapshotCmd struct{}

func (cmd *DebugDumpSnapshotCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		if errors.Is(err, storage.ErrNotInitialized) {
			return err
		}
		return fmt.Errorf("failed to load database: %w", err)
	}

	snap, err := ctx.Store.LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return dumpJSON(snap)
}
