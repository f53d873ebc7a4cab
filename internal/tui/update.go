package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/tracker"
	"github.com/julianstephens/habitpulse/internal/tui/components/habits"
	"github.com/julianstephens/habitpulse/internal/utils"
	"github.com/julianstephens/habitpulse/internal/validation"
)

// views is the tab order.
var views = []constants.SessionState{constants.StateToday, constants.StateCalendar, constants.StateAnalytics}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitsModel.SetSize(msg.Width-4, msg.Height-10)
		m.analyticsModel.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateEditNote:
		return m.updateEditNote(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case habits.ToggleHabitMsg:
		m.toggle(msg.ID)
		return m, nil
	case habits.EditNoteMsg:
		return m.startNote(msg.ID)
	case habits.AddHabitMsg:
		return m.startAddHabit()
	case habits.DeleteHabitMsg:
		if _, ok := m.findHabit(msg.ID); ok {
			m.habitToDeleteID = msg.ID
			m.previousState = m.state
			m.state = constants.StateConfirmDelete
		}
		return m, nil
	case tea.KeyMsg:
		if handled, cmd := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StateCalendar:
		m.calendarModel, cmd = m.calendarModel.Update(msg)
	case constants.StateAnalytics:
		m.analyticsModel, cmd = m.analyticsModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.state == constants.StateToday && m.habitsModel.Filtering() {
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.Tab):
		m.cycleView(1)
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.cycleView(-1)
		return true, nil
	}

	if m.state != constants.StateToday {
		return false, nil
	}
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		m.setDay(utils.AddDays(m.day, -1))
		return true, nil
	case key.Matches(msg, m.keys.NextDay):
		m.setDay(utils.AddDays(m.day, 1))
		return true, nil
	case key.Matches(msg, m.keys.Today):
		m.setDay(m.scheduler.Today())
		return true, nil
	}
	return false, nil
}

func (m *Model) cycleView(step int) {
	for i, s := range views {
		if s == m.state {
			m.state = views[(i+step+len(views))%len(views)]
			m.statusMsg = ""
			return
		}
	}
}

// toggle flips the selected day's completion and persists the habit.
func (m *Model) toggle(id string) {
	h, ok := m.findHabit(id)
	if !ok {
		return
	}
	updated := tracker.ToggleCompletion(h, utils.DateKey(m.day))
	if err := m.store.UpdateHabit(updated); err != nil {
		logger.Error("Failed to toggle habit", "habit", id, "error", err)
		m.statusMsg = fmt.Sprintf("Failed to save: %v", err)
		return
	}
	m.statusMsg = ""
	m.reload()
}

// updateForm feeds msg to the active form. Esc aborts.
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.form.State = huh.StateAborted
		return nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m Model) closeForm() Model {
	m.form = nil
	m.habitForm = nil
	m.noteForm = nil
	m.noteHabitID = ""
	m.formError = ""
	m.state = m.previousState
	return m
}

func (m Model) startAddHabit() (tea.Model, tea.Cmd) {
	m.habitForm = &HabitFormModel{
		Goal:  "1",
		Unit:  constants.DefaultHabitUnit,
		Type:  models.HabitTypeCheck,
		Days:  models.FrequencyDaily.Days(),
		Color: habitColors[0],
	}
	m.form = newHabitForm(m.habitForm)
	m.formError = ""
	m.previousState = m.state
	m.state = constants.StateAddHabit
	return m, m.form.Init()
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.updateForm(msg)

	switch m.form.State {
	case huh.StateCompleted:
		h, err := buildHabit(m.habitForm, m.habits, m.scheduler.Now())
		if err == nil {
			err = m.store.AddHabit(h)
		}
		if err != nil {
			// Stay in the form so the user can correct it or cancel with esc.
			m.formError = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		logger.Info("Added habit", "id", h.ID, "title", h.Title)
		m = m.closeForm()
		m.reload()
		m.statusMsg = fmt.Sprintf("Added %q", h.Title)
		return m, nil
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m Model) startNote(id string) (tea.Model, tea.Cmd) {
	h, ok := m.findHabit(id)
	if !ok {
		return m, nil
	}
	day := utils.DateKey(m.day)
	m.noteForm = &NoteFormModel{Note: h.Logs[day].Note}
	m.noteHabitID = id
	m.form = newNoteForm(m.noteForm, h.Title, day)
	m.formError = ""
	m.previousState = m.state
	m.state = constants.StateEditNote
	return m, m.form.Init()
}

func (m Model) updateEditNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.updateForm(msg)

	switch m.form.State {
	case huh.StateCompleted:
		h, ok := m.findHabit(m.noteHabitID)
		if !ok {
			return m.closeForm(), nil
		}
		err := validation.ValidateNote(m.noteForm.Note)
		if err == nil {
			err = m.store.UpdateHabit(tracker.SetNote(h, utils.DateKey(m.day), m.noteForm.Note))
		}
		if err != nil {
			m.formError = err.Error()
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m = m.closeForm()
		m.reload()
		return m, nil
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		if err := m.store.DeleteHabit(m.habitToDeleteID); err != nil {
			logger.Error("Failed to delete habit", "habit", m.habitToDeleteID, "error", err)
			m.statusMsg = fmt.Sprintf("Failed to delete: %v", err)
		} else {
			m.statusMsg = "Habit deleted"
			m.reload()
		}
	case "n", "N", "esc", "q":
	default:
		return m, nil
	}
	m.habitToDeleteID = ""
	m.state = m.previousState
	return m, nil
}
