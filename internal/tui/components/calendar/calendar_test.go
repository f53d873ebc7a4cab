package calendar

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitpulse/internal/aggregate"
	"github.com/julianstephens/habitpulse/internal/models"
)

func TestUpdateNavigatesMonths(t *testing.T) {
	m := New(nil, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		key       string
		wantYear  int
		wantMonth time.Month
	}{
		{"h", 2023, time.December},
		{"h", 2023, time.November},
		{"t", 2024, time.January},
		{"l", 2024, time.February},
		{"l", 2024, time.March},
	}
	for _, tt := range tests {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
		if y, mo := m.Month(); y != tt.wantYear || mo != tt.wantMonth {
			t.Errorf("after %q month = %d-%v, want %d-%v", tt.key, y, mo, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestUpdateArrowKeys(t *testing.T) {
	m := New(nil, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if y, mo := m.Month(); y != 2024 || mo != time.February {
		t.Errorf("left from March 31 = %d-%v, want 2024-February", y, mo)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if y, mo := m.Month(); y != 2024 || mo != time.April {
		t.Errorf("month = %d-%v, want 2024-April", y, mo)
	}
}

func TestRender(t *testing.T) {
	h := models.Habit{
		ID:        "a",
		Goal:      1,
		Frequency: models.FrequencyDaily,
		Logs: map[string]models.HabitLog{
			"2024-02-01": {Date: "2024-02-01", Value: 1, Completed: true},
		},
	}
	out := Render(aggregate.Monthly([]models.Habit{h}, 2024, time.February), "2024-02-10")

	for _, want := range []string{"February 2024", "Su  Mo  Tu  We  Th  Fr  Sa", "29", "1 perfect", "0 partial"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q:\n%s", want, out)
		}
	}
}
