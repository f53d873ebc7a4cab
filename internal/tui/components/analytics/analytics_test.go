package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/stats"
)

var today = time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)

func sampleHabits() []models.Habit {
	return []models.Habit{
		{
			ID:        "a",
			Title:     "Morning Walk",
			Goal:      1,
			Frequency: models.FrequencyDaily,
			Logs: map[string]models.HabitLog{
				"2024-06-06": {Date: "2024-06-06", Value: 1, Completed: true},
				"2024-06-05": {Date: "2024-06-05", Value: 1, Completed: true},
				"2024-06-03": {Date: "2024-06-03", Value: 1, Completed: true},
			},
		},
		{ID: "b", Title: "A habit with a very long title indeed", Goal: 1, Frequency: models.FrequencyWeekdays},
	}
}

func TestRenderOverview(t *testing.T) {
	out := RenderOverview(stats.Summarize(sampleHabits()))
	for _, want := range []string{"Habits", "Completions", "100%", "Best day"} {
		if !strings.Contains(out, want) {
			t.Errorf("overview missing %q:\n%s", want, out)
		}
	}

	empty := RenderOverview(stats.Summarize(nil))
	if !strings.Contains(empty, "-") {
		t.Errorf("overview without completions should show '-' for best day:\n%s", empty)
	}
}

func TestRenderWeek(t *testing.T) {
	out := RenderWeek(aggregate.Weekly(sampleHabits(), today))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title + bar rows + weekday labels
	if len(lines) != 1+barHeight+1 {
		t.Fatalf("RenderWeek produced %d lines, want %d:\n%s", len(lines), barHeight+2, out)
	}
	if !strings.Contains(lines[len(lines)-1], "Fr") || !strings.Contains(lines[len(lines)-1], "Th") {
		t.Errorf("weekday labels = %q", lines[len(lines)-1])
	}
}

func TestRenderHabits(t *testing.T) {
	out := RenderHabits(sampleHabits(), today)
	if !strings.Contains(out, "Morning Walk") {
		t.Errorf("missing habit row:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("long title should be truncated:\n%s", out)
	}
}

func TestViewEmpty(t *testing.T) {
	if got := New(nil, today).View(); !strings.Contains(got, "Nothing to analyze") {
		t.Errorf("empty view = %q", got)
	}
}
