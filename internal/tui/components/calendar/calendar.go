package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	perfectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214"))

	noneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	todayStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)
)

type KeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	ThisMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next month"),
		),
		ThisMonth: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this month"),
		),
	}
}

type Model struct {
	keys   KeyMap
	habits []models.Habit
	today  time.Time
	year   int
	month  time.Month
}

func New(habits []models.Habit, today time.Time) Model {
	today = utils.CivilDate(today)
	return Model{
		keys:   DefaultKeyMap(),
		habits: habits,
		today:  today,
		year:   today.Year(),
		month:  today.Month(),
	}
}

func (m *Model) SetHabits(habits []models.Habit, today time.Time) {
	m.habits = habits
	m.today = utils.CivilDate(today)
}

// Month returns the month currently shown.
func (m Model) Month() (int, time.Month) {
	return m.year, m.month
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) shift(n int) {
	first := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	m.year, m.month = first.Year(), first.Month()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.shift(-1)
		case key.Matches(msg, m.keys.NextMonth):
			m.shift(1)
		case key.Matches(msg, m.keys.ThisMonth):
			m.year, m.month = m.today.Year(), m.today.Month()
		}
	}
	return m, nil
}

func (m Model) View() string {
	return Render(aggregate.Monthly(m.habits, m.year, m.month), utils.DateKey(m.today))
}

// Render draws a Sunday-first month grid with each day colored by its class.
func Render(cal aggregate.MonthCalendar, todayKey string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %d", cal.Month, cal.Year)))
	b.WriteString("\n\n Su  Mo  Tu  We  Th  Fr  Sa\n")

	col := int(cal.FirstWeekday)
	b.WriteString(strings.Repeat("    ", col))
	for _, d := range cal.Days {
		cell := fmt.Sprintf(" %2d ", d.Day)
		style := noneStyle
		switch d.Class {
		case aggregate.DayPerfect:
			style = perfectStyle
		case aggregate.DayPartial:
			style = partialStyle
		}
		if d.Date == todayKey {
			style = style.Inherit(todayStyle)
		}
		b.WriteString(style.Render(cell))
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n%s %d perfect   %s %d partial\n",
		perfectStyle.Render("  "), cal.PerfectDays,
		partialStyle.Render("  "), cal.PartialDays))
	return b.String()
}
