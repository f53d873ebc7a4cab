package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/scheduler"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/tui/components/analytics"
	"github.com/julianstephens/habitpulse/internal/tui/components/calendar"
	"github.com/julianstephens/habitpulse/internal/tui/components/habits"
	"github.com/julianstephens/habitpulse/internal/utils"
)

// HabitFormModel backs the add-habit form.
type HabitFormModel struct {
	Title string
	Goal  string
	Unit  string
	Type  models.HabitType
	Days  []int
	Color string
}

// NoteFormModel backs the note editor.
type NoteFormModel struct {
	Note string
}

type Model struct {
	store           storage.Provider
	scheduler       *scheduler.Scheduler
	state           constants.SessionState
	previousState   constants.SessionState
	keys            KeyMap
	help            help.Model
	habits          []models.Habit
	profile         models.Profile
	day             time.Time
	habitsModel     habits.Model
	calendarModel   calendar.Model
	analyticsModel  analytics.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	noteForm        *NoteFormModel
	noteHabitID     string
	habitToDeleteID string
	formError       string
	statusMsg       string
	quitting        bool
	width           int
	height          int
}

func NewModel(store storage.Provider, sched *scheduler.Scheduler) Model {
	if sched == nil {
		sched = scheduler.New()
	}
	today := sched.Today()

	m := Model{
		store:          store,
		scheduler:      sched,
		state:          constants.StateToday,
		keys:           DefaultKeyMap(),
		help:           help.New(),
		day:            today,
		habitsModel:    habits.New(nil, today, today, 0, 0),
		calendarModel:  calendar.New(nil, today),
		analyticsModel: analytics.New(nil, today),
	}

	if p, err := store.GetProfile(); err == nil {
		m.profile = p
	} else {
		m.profile = models.DefaultProfile()
	}
	m.reload()
	return m
}

// reload re-reads every habit and pushes them into the views.
func (m *Model) reload() {
	all, err := m.store.GetAllHabits()
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		m.statusMsg = "Failed to load habits: " + err.Error()
		return
	}
	m.habits = all
	m.refreshViews()
}

func (m *Model) refreshViews() {
	today := m.scheduler.Today()
	m.habitsModel.SetHabits(scheduler.DueHabits(m.habits, m.day), m.day, today)
	m.calendarModel.SetHabits(m.habits, today)
	m.analyticsModel.SetHabits(m.habits, today)
}

func (m *Model) setDay(day time.Time) {
	m.day = utils.CivilDate(day)
	m.refreshViews()
}

func (m Model) findHabit(id string) (models.Habit, bool) {
	for _, h := range m.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Toggle, hk.Note, m.keys.PrevDay, m.keys.NextDay)
	case constants.StateCalendar:
		ck := m.calendarModel.Keys()
		keys = append(keys, ck.PrevMonth, ck.NextMonth)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Toggle, hk.Note, hk.Add, hk.Delete, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
	case constants.StateCalendar:
		ck := m.calendarModel.Keys()
		actions = []key.Binding{ck.PrevMonth, ck.NextMonth, ck.ThisMonth}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
