package habits

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/stats"
	"github.com/julianstephens/habitpulse/internal/utils"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type EditNoteMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

// Item is one habit as seen on the selected date.
type Item struct {
	Habit     models.Habit
	Due       bool
	Completed bool
	Note      string
	Streak    int
}

func (i Item) Title() string {
	mark := "○ "
	if i.Completed {
		mark = "✓ "
	}
	return mark + i.Habit.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s · %s", goalLabel(i.Habit), scheduler.FormatFrequency(i.Habit.Frequency))
	if !i.Due {
		desc += " · rest day"
	}
	if i.Streak > 0 {
		desc += fmt.Sprintf(" · 🔥 %d", i.Streak)
	}
	if i.Note != "" {
		desc += " · ✎ " + i.Note
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Title }

func goalLabel(h models.Habit) string {
	goal := fmt.Sprintf("%g", h.Goal)
	if h.Unit == "" {
		return goal
	}
	return goal + " " + h.Unit
}

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Note   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle done"),
		),
		Note: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "note"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
	day  time.Time
}

// Items builds the list rows for day. Streaks are measured as of asOf so
// browsing past dates does not change them.
func Items(habits []models.Habit, day, asOf time.Time) []Item {
	key := utils.DateKey(day)
	items := make([]Item, len(habits))
	for i, h := range habits {
		l := h.Logs[key]
		items[i] = Item{
			Habit:     h,
			Due:       scheduler.IsDue(h, day),
			Completed: l.Completed,
			Note:      l.Note,
			Streak:    stats.Streak(h, asOf),
		}
	}
	return items
}

func New(habits []models.Habit, day, asOf time.Time, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Note, keys.Add, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Note, keys.Add, keys.Delete}
	}

	m := Model{list: l, keys: keys}
	m.SetHabits(habits, day, asOf)
	return m
}

// SetHabits replaces the rows, keeping the cursor where it was.
func (m *Model) SetHabits(habits []models.Habit, day, asOf time.Time) {
	m.day = utils.CivilDate(day)
	rows := Items(habits, m.day, asOf)
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

// Selected returns the habit under the cursor.
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

// Filtering reports whether the user is typing a filter, in which case keys
// belong to the list.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Note):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return EditNoteMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
