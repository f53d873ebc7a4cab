package reports

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitpulse/internal/aggregate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	todayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Underline(true).
			Bold(true)

	perfectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("42"))

	partialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214"))

	noneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const barWidth = 20

// progressBar renders pct (clamped to 0..100) as a fixed-width bar.
func progressBar(pct int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * barWidth / 100
	return doneStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func classStyle(c aggregate.DayClass) lipgloss.Style {
	switch c {
	case aggregate.DayPerfect:
		return perfectStyle
	case aggregate.DayPartial:
		return partialStyle
	default:
		return noneStyle
	}
}
