package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateCalendar:
		content = docStyle.Render(m.calendarModel.View())
	case constants.StateAnalytics:
		content = docStyle.Render(m.analyticsModel.View())
	case constants.StateAddHabit, constants.StateEditNote:
		content = m.viewForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	var status string
	if m.statusMsg != "" {
		status = warningStyle.Render(m.statusMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	titles := map[constants.SessionState]string{
		constants.StateToday:     "Today",
		constants.StateCalendar:  "Calendar",
		constants.StateAnalytics: "Analytics",
	}
	for _, s := range views {
		if m.state == s || (m.previousState == s && !isView(m.state)) {
			tabs = append(tabs, activeTabStyle.Render(titles[s]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(titles[s]))
		}
	}
	greeting := mutedStyle.Render("  Hi, " + m.profile.Name)
	return lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, greeting)...)
}

func isView(s constants.SessionState) bool {
	for _, v := range views {
		if v == s {
			return true
		}
	}
	return false
}

func (m Model) viewToday() string {
	summary := aggregate.Daily(m.habits, m.day)

	heading := "Habits History"
	if utils.DateKey(m.day) == utils.DateKey(m.scheduler.Today()) {
		heading = "Today's Habits"
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(m.day.Format("Monday, Jan 2")),
		m.viewStrip(),
		fmt.Sprintf("%s  %d/%d done · %d%%",
			headingStyle.Render(heading), summary.DoneCount, summary.DueCount, summary.ProgressPercent),
	)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.habitsModel.View()))
}

// viewStrip renders the scrolling date strip around today with the
// selected day highlighted.
func (m Model) viewStrip() string {
	selected := utils.DateKey(m.day)
	strip := aggregate.Strip(m.habits, m.scheduler.Today(), constants.StripDaysBefore, constants.StripDaysAfter)

	var cells []string
	for _, d := range strip {
		label := fmt.Sprintf("%s %s", d.Weekday.String()[:2], d.Date[8:])
		if d.IsToday {
			label = "•" + label
		}
		switch {
		case d.Date == selected:
			cells = append(cells, stripSelectedStyle.Render(label))
		case aggregate.Classify(d.DueCount, d.DoneCount) == aggregate.DayPerfect:
			cells = append(cells, stripPerfectStyle.Render(label))
		default:
			cells = append(cells, stripDayStyle.Render(mutedStyle.Render(label)))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	if m.width > 0 && lipgloss.Width(line) > m.width-4 {
		line = trimStrip(cells, selected, strip, m.width-4)
	}
	return line
}

// trimStrip keeps as many cells as fit, centered on the selected day when it
// is inside the strip and on today otherwise.
func trimStrip(cells []string, selected string, strip []aggregate.StripDay, width int) string {
	center := constants.StripDaysBefore
	for i, d := range strip {
		if d.Date == selected {
			center = i
		}
	}
	lo, hi := center, center+1
	for lo > 0 || hi < len(cells) {
		grew := false
		if lo > 0 && lipgloss.Width(strings.Join(cells[lo-1:hi], "")) <= width {
			lo--
			grew = true
		}
		if hi < len(cells) && lipgloss.Width(strings.Join(cells[lo:hi+1], "")) <= width {
			hi++
			grew = true
		}
		if !grew {
			break
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells[lo:hi]...)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	var errLine string
	if m.formError != "" {
		errLine = dangerStyle.Render("Error: " + m.formError)
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.form.View(), errLine))
}

func (m Model) viewConfirmDelete() string {
	title := m.habitToDeleteID
	if h, ok := m.findHabit(m.habitToDeleteID); ok {
		title = h.Title
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its logs?", title)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
