// Package analytics renders the statistics tab: lifetime totals, the last
// seven days of progress, and per-habit streaks with a recent heatmap.
package analytics

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/utils"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	filledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const barHeight = 5

type Model struct {
	habits []models.Habit
	today  time.Time
	width  int
}

func New(habits []models.Habit, today time.Time) Model {
	return Model{habits: habits, today: utils.CivilDate(today)}
}

func (m *Model) SetHabits(habits []models.Habit, today time.Time) {
	m.habits = habits
	m.today = utils.CivilDate(today)
}

func (m *Model) SetSize(width, _ int) {
	m.width = width
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	if len(m.habits) == 0 {
		return "\n  Nothing to analyze yet.\n  Add a habit on the Today tab."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderOverview(stats.Summarize(m.habits)),
		"",
		RenderWeek(aggregate.Weekly(m.habits, m.today)),
		"",
		RenderHabits(m.habits, m.today),
	)
}

// RenderOverview draws the lifetime totals as a row of cards.
func RenderOverview(o stats.Overview) string {
	best := "-"
	if o.HasBestWeekday {
		best = o.BestWeekday.String()
	}
	cards := []string{
		card("Habits", fmt.Sprintf("%d", o.TotalHabits)),
		card("Completions", fmt.Sprintf("%d", o.TotalCompleted)),
		card("Completion rate", fmt.Sprintf("%d%%", o.CompletionRate)),
		card("Best day", best),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label, value string) string {
	return cardStyle.Render(mutedStyle.Render(label) + "\n" + sectionStyle.Render(value))
}

// RenderWeek draws one vertical bar per day, scaled to the day's progress.
func RenderWeek(w aggregate.WeekSeries) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Last 7 days · %d%%", w.OverallPercent)))
	b.WriteString("\n")

	for row := barHeight; row >= 1; row-- {
		for _, d := range w.Days {
			// A row is lit once the day's progress reaches its share of the bar.
			if d.ProgressPercent > 0 && d.ProgressPercent*barHeight >= (row-1)*100+1 {
				b.WriteString(filledStyle.Render(" ██ "))
			} else {
				b.WriteString(mutedStyle.Render(" ░░ "))
			}
		}
		b.WriteString("\n")
	}
	for _, d := range w.Days {
		label := "  "
		if wd, err := utils.Weekday(d.Date); err == nil {
			label = time.Weekday(wd).String()[:2]
		}
		b.WriteString(" " + label + " ")
	}
	b.WriteString("\n")
	return b.String()
}

// RenderHabits lists each habit's streak, totals and recent history.
func RenderHabits(habits []models.Habit, today time.Time) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Habits"))
	b.WriteString("\n")
	for _, h := range habits {
		s := stats.Compute(h, today)
		var cells strings.Builder
		for _, done := range stats.History(h, today, constants.HeatmapDays) {
			if done {
				cells.WriteString(filledStyle.Render("■"))
			} else {
				cells.WriteString(mutedStyle.Render("□"))
			}
		}
		b.WriteString(fmt.Sprintf("%-20s 🔥%-4d ✓%-5d %4d%%  %s\n",
			truncate(h.Title, 20), s.Streak, s.TotalCompleted, s.CompletionRate, cells.String()))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
