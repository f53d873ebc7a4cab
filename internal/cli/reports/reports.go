package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/utils"
)

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

type TodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
	JSON bool   `help:"Print the daily summary as JSON."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	summary := aggregate.Daily(habits, day)
	if c.JSON {
		return printJSON(summary)
	}

	key := utils.DateKey(day)
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s, %s", day.Weekday(), key)))
	fmt.Println()

	due := scheduler.DueHabits(habits, day)
	if len(due) == 0 {
		fmt.Println(mutedStyle.Render("Nothing scheduled. Enjoy the rest day."))
		return nil
	}

	for _, h := range due {
		l, _ := h.Log(key)
		box := "[ ]"
		line := h.Title
		if l.Completed {
			box = doneStyle.Render("[x]")
			line = doneStyle.Render(line)
		}
		detail := fmt.Sprintf("%s %s", cli.FormatValue(h.Goal), h.Unit)
		if streak := stats.Streak(h, day); streak > 0 {
			detail += fmt.Sprintf(" · %d day streak", streak)
		}
		fmt.Printf("%s %s  %s\n", box, line, mutedStyle.Render(detail))
		if l.HasNote() {
			fmt.Printf("      %s\n", mutedStyle.Render("“"+l.Note+"”"))
		}
	}

	fmt.Println()
	fmt.Printf("%s %d/%d (%d%%)\n", progressBar(summary.ProgressPercent), summary.DoneCount, summary.DueCount, summary.ProgressPercent)
	return nil
}

type WeekCmd struct {
	End  string `help:"Last day of the week in YYYY-MM-DD format." default:"today"`
	JSON bool   `help:"Print the weekly series as JSON."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}
	end, err := ctx.ResolveDate(c.End)
	if err != nil {
		return err
	}

	week := aggregate.Weekly(habits, end)
	if c.JSON {
		return printJSON(week)
	}

	fmt.Println(titleStyle.Render("Weekly progress"))
	fmt.Println()
	for _, d := range week.Days {
		wd, _ := utils.Weekday(d.Date)
		label := fmt.Sprintf("%s %s", time.Weekday(wd).String()[:3], d.Date)
		if d.DueCount == 0 {
			fmt.Printf("%s  %s\n", label, mutedStyle.Render("rest"))
			continue
		}
		fmt.Printf("%s  %s %3d%%  %d/%d\n", label, progressBar(d.ProgressPercent), d.ProgressPercent, d.DoneCount, d.DueCount)
	}
	fmt.Println()
	fmt.Printf("Overall: %d%%\n", week.OverallPercent)
	return nil
}

type StripCmd struct {
	Before int  `help:"Days before today." default:"14"`
	After  int  `help:"Days after today." default:"5"`
	JSON   bool `help:"Print the strip as JSON."`
}

func (c *StripCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	strip := aggregate.Strip(habits, ctx.Today(), c.Before, c.After)
	if c.JSON {
		return printJSON(strip)
	}

	fmt.Println(RenderStrip(strip))
	return nil
}

// RenderStrip draws the date strip as two rows: weekday initials over day
// numbers, each day number colored by its classification.
func RenderStrip(strip []aggregate.StripDay) string {
	var top, bottom []string
	for _, d := range strip {
		day, _ := utils.ParseDateKey(d.Date)
		initial := d.Weekday.String()[:2]
		num := fmt.Sprintf("%2d", day.Day())

		cell := classStyle(aggregate.Classify(d.DueCount, d.DoneCount))
		if d.IsToday {
			initial = todayStyle.Render(initial)
			num = todayStyle.Inherit(cell).Render(num)
		} else {
			initial = mutedStyle.Render(initial)
			num = cell.Render(num)
		}
		top = append(top, initial)
		bottom = append(bottom, num)
	}
	return strings.Join(top, " ") + "\n" + strings.Join(bottom, " ")
}

type CalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month in YYYY-MM format (default: current month)."`
	JSON  bool   `help:"Print the month as JSON."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	today := ctx.Today()
	year, month := today.Year(), today.Month()
	if c.Month != "" {
		t, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("invalid month: %s (expected YYYY-MM)", c.Month)
		}
		year, month = t.Year(), t.Month()
	}

	cal := aggregate.Monthly(habits, year, month)
	if c.JSON {
		return printJSON(cal)
	}

	fmt.Println(RenderCalendar(cal, utils.DateKey(today)))
	return nil
}

// RenderCalendar draws a Sunday-first month grid with a legend.
func RenderCalendar(cal aggregate.MonthCalendar, todayKey string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %d", cal.Month, cal.Year)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	col := int(cal.FirstWeekday)
	b.WriteString(strings.Repeat("   ", col))
	for _, d := range cal.Days {
		style := classStyle(d.Class)
		if d.Date == todayKey {
			style = style.Inherit(todayStyle)
		}
		b.WriteString(style.Render(fmt.Sprintf("%2d", d.Day)))
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d perfect  %s %d partial",
		perfectStyle.Render("  "), cal.PerfectDays,
		partialStyle.Render("  "), cal.PartialDays))
	return b.String()
}

type HeatmapCmd struct {
	Habit string `arg:"" optional:"" help:"Habit ID or title (default: all habits)."`
	Days  int    `help:"Number of days to show." default:"28"`
}

func (c *HeatmapCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}
	if c.Habit != "" {
		h, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = habits[:0]
		habits = append(habits, h)
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Today()
	rows := make([]string, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, fmt.Sprintf("%-20s %s", h.Title, RenderHeatmap(stats.History(h, today, c.Days))))
	}
	fmt.Println(boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return nil
}

// RenderHeatmap draws one cell per day, oldest first.
func RenderHeatmap(history []bool) string {
	var b strings.Builder
	for _, done := range history {
		if done {
			b.WriteString(doneStyle.Render("■"))
		} else {
			b.WriteString(mutedStyle.Render("□"))
		}
	}
	return b.String()
}

type StatsCmd struct {
	JSON bool `help:"Print statistics as JSON."`
}

type habitStatsRow struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Stats stats.HabitStats `json:"stats"`
}

type statsReport struct {
	Habits   []habitStatsRow `json:"habits"`
	Overview stats.Overview  `json:"overview"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	today := ctx.Today()
	report := statsReport{Overview: stats.Summarize(habits)}
	for _, h := range habits {
		report.Habits = append(report.Habits, habitStatsRow{ID: h.ID, Title: h.Title, Stats: stats.Compute(h, today)})
	}

	if c.JSON {
		return printJSON(report)
	}

	o := report.Overview
	fmt.Println(titleStyle.Render("Analytics"))
	fmt.Println()
	fmt.Printf("Habits:           %d\n", o.TotalHabits)
	fmt.Printf("Logged days:      %d\n", o.TotalLogs)
	fmt.Printf("Completions:      %d\n", o.TotalCompleted)
	fmt.Printf("Completion rate:  %d%%\n", o.CompletionRate)
	if o.HasBestWeekday {
		fmt.Printf("Best day:         %s\n", o.BestWeekday)
	}
	fmt.Println()

	if len(report.Habits) == 0 {
		return nil
	}
	fmt.Printf("%-24s %7s %6s %6s\n", "HABIT", "STREAK", "TOTAL", "RATE")
	for _, r := range report.Habits {
		fmt.Printf("%-24s %7d %6d %5d%%\n", r.Title, r.Stats.Streak, r.Stats.TotalCompleted, r.Stats.CompletionRate)
	}
	fmt.Println()
	fmt.Println(mutedStyle.Render(fmt.Sprintf("Rate is completions over a %d-day window.", constants.CompletionRateWindowDays)))
	return nil
}
