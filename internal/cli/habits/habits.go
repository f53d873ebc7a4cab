package habits

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/tracker"
	"github.com/julianstephens/habitpulse/internal/utils"
	"github.com/julianstephens/habitpulse/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit with its statistics."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and all of its logs."`
}

type HabitAddCmd struct {
	Title       string  `arg:"" help:"Habit title."`
	Goal        float64 `short:"g" help:"Target per occurrence." default:"1"`
	Unit        string  `short:"u" help:"Unit of the goal (e.g. steps, mins)." default:"times"`
	Type        string  `short:"t" help:"Habit type (count|check|time)." default:"check" enum:"count,check,time"`
	Days        string  `short:"d" help:"Weekdays the habit is due (daily, weekdays, weekends, or e.g. mon,wed,fri)." default:"daily"`
	Description string  `help:"Optional description."`
	Color       string  `help:"Display color." default:"blue"`
	Icon        string  `help:"Display icon name." default:"check"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	existing, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	freq, err := scheduler.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	habit := models.Habit{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Goal:        c.Goal,
		Unit:        c.Unit,
		Frequency:   freq,
		Type:        models.HabitType(c.Type),
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   ctx.Scheduler.Now(),
		Logs:        map[string]models.HabitLog{},
	}

	if err := validation.ValidateHabit(habit, existing); err != nil {
		return err
	}

	if err := ctx.WithLock(func() error { return ctx.Store.AddHabit(habit) }); err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s %s, %s)\n", habit.Title, cli.FormatValue(habit.Goal), habit.Unit, scheduler.FormatFrequency(habit.Frequency))
	fmt.Printf("ID: %s\n", habit.ID)
	return nil
}

type HabitListCmd struct {
	JSON bool `help:"Print habits with their statistics as JSON."`
}

type habitListItem struct {
	models.Habit
	Stats    stats.HabitStats `json:"stats"`
	DueToday bool             `json:"dueToday"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	today := ctx.Today()
	if c.JSON {
		items := make([]habitListItem, 0, len(habits))
		for _, h := range habits {
			items = append(items, habitListItem{Habit: h, Stats: stats.Compute(h, today), DueToday: scheduler.IsDue(h, today)})
		}
		out, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal habits: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(habits) == 0 {
		fmt.Println("No habits found. Add one with 'habitpulse habit add'.")
		return nil
	}

	fmt.Printf("%-24s %-16s %-14s %7s %6s\n", "HABIT", "DAYS", "GOAL", "STREAK", "TOTAL")
	for _, h := range habits {
		s := stats.Compute(h, today)
		marker := " "
		if scheduler.IsDue(h, today) {
			marker = "•"
		}
		fmt.Printf("%s%-23s %-16s %-14s %7d %6d\n",
			marker,
			truncate(h.Title, 23),
			scheduler.FormatFrequency(h.Frequency),
			truncate(cli.FormatValue(h.Goal)+" "+h.Unit, 14),
			s.Streak,
			s.TotalCompleted,
		)
	}
	fmt.Println("\n• due today")
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit ID or title."`
	Days  int    `help:"Days of history to show." default:"28"`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	today := ctx.Today()
	s := stats.Compute(h, today)

	fmt.Printf("%s\n", h.Title)
	if h.Description != "" {
		fmt.Printf("  %s\n", h.Description)
	}
	fmt.Printf("  ID:        %s\n", h.ID)
	fmt.Printf("  Type:      %s\n", h.Type)
	fmt.Printf("  Goal:      %s %s\n", cli.FormatValue(h.Goal), h.Unit)
	fmt.Printf("  Days:      %s\n", scheduler.FormatFrequency(h.Frequency))
	fmt.Printf("  Created:   %s\n", h.CreatedAt.Format(constants.DateFormat))
	fmt.Printf("  Due today: %t\n", scheduler.IsDue(h, today))
	fmt.Println()
	fmt.Printf("  Streak:          %d days\n", s.Streak)
	fmt.Printf("  Total completed: %d\n", s.TotalCompleted)
	fmt.Printf("  Completion rate: %d%%\n", s.CompletionRate)
	fmt.Println()

	history := stats.History(h, today, c.Days)
	var b strings.Builder
	for _, done := range history {
		if done {
			b.WriteString("■")
		} else {
			b.WriteString("·")
		}
	}
	fmt.Printf("  Last %d days: %s\n", len(history), b.String())

	notes := 0
	for _, l := range h.SortedLogs() {
		if l.HasNote() {
			if notes == 0 {
				fmt.Println("\n  Notes:")
			}
			fmt.Printf("    %s  %s\n", l.Date, l.Note)
			notes++
		}
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string   `arg:"" help:"Habit ID or title."`
	Title       *string  `help:"New title."`
	Goal        *float64 `short:"g" help:"New target per occurrence."`
	Unit        *string  `short:"u" help:"New unit."`
	Type        *string  `short:"t" help:"New type (count|check|time)."`
	Days        *string  `short:"d" help:"New weekdays (daily, weekdays, weekends, or e.g. mon,wed,fri)."`
	Description *string  `help:"New description."`
	Color       *string  `help:"New display color."`
	Icon        *string  `help:"New display icon name."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	existing, err := ctx.LoadHabits()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Title != nil {
		habit.Title = strings.TrimSpace(*c.Title)
	}
	if c.Goal != nil {
		habit.Goal = *c.Goal
	}
	if c.Unit != nil {
		habit.Unit = *c.Unit
	}
	if c.Type != nil {
		habit.Type = models.HabitType(*c.Type)
	}
	if c.Days != nil {
		freq, err := scheduler.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		habit.Frequency = freq
	}
	if c.Description != nil {
		habit.Description = *c.Description
	}
	if c.Color != nil {
		habit.Color = *c.Color
	}
	if c.Icon != nil {
		habit.Icon = *c.Icon
	}

	if err := validation.ValidateHabit(habit, existing); err != nil {
		return err
	}

	if err := ctx.WithLock(func() error { return ctx.Store.UpdateHabit(habit) }); err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	fmt.Printf("Updated habit: %s\n", habit.Title)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or title."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Delete %q and its %d log(s)? This cannot be undone. [y/N]: ", habit.Title, len(habit.Logs))
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.WithLock(func() error { return ctx.Store.DeleteHabit(habit.ID) }); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	fmt.Printf("Deleted habit: %s (ID: %s)\n", habit.Title, habit.ID)
	return nil
}

// ToggleCmd flips a habit's completion for a day.
type ToggleCmd struct {
	Habit string `arg:"" help:"Habit ID or title."`
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	key := utils.DateKey(day)

	var updated models.Habit
	err = ctx.WithLock(func() error {
		habit, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		updated = tracker.ToggleCompletion(habit, key)
		return ctx.Store.UpdateHabit(updated)
	})
	if err != nil {
		return err
	}

	if updated.CompletedOn(key) {
		fmt.Printf("✓ %s completed for %s\n", updated.Title, key)
	} else {
		fmt.Printf("○ %s unmarked for %s\n", updated.Title, key)
	}
	if !scheduler.IsDue(updated, day) {
		fmt.Printf("  (%s is not scheduled on %s)\n", updated.Title, day.Weekday())
	}
	fmt.Printf("  Streak: %d\n", stats.Streak(updated, ctx.Today()))
	return nil
}

// NoteCmd sets the note on a habit's day, creating the log if needed.
type NoteCmd struct {
	Habit string `arg:"" help:"Habit ID or title."`
	Text  string `arg:"" help:"Note text. An empty string clears the note."`
	Date  string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *NoteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := validation.ValidateNote(c.Text); err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	key := utils.DateKey(day)

	var title string
	err = ctx.WithLock(func() error {
		habit, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		title = habit.Title
		return ctx.Store.UpdateHabit(tracker.SetNote(habit, key, c.Text))
	})
	if err != nil {
		return err
	}

	fmt.Printf("Saved note for %s on %s\n", title, key)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
