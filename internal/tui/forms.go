package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/validation"
)

var habitColors = []string{"blue", "green", "yellow", "purple", "red", "orange", "pink", "teal"}

func newHabitForm(f *HabitFormModel) *huh.Form {
	dayOptions := make([]huh.Option[int], 7)
	for d := 0; d < 7; d++ {
		dayOptions[d] = huh.NewOption(time.Weekday(d).String(), d)
	}
	colorOptions := make([]huh.Option[string], len(habitColors))
	for i, c := range habitColors {
		colorOptions[i] = huh.NewOption(c, c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Placeholder("Drink water").
				CharLimit(constants.MaxTitleLength).
				Value(&f.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.HabitType]().
				Title("Type").
				Options(
					huh.NewOption("Check (done / not done)", models.HabitTypeCheck),
					huh.NewOption("Count", models.HabitTypeCount),
					huh.NewOption("Time", models.HabitTypeTime),
				).
				Value(&f.Type),
			huh.NewInput().
				Title("Daily goal").
				Value(&f.Goal).
				Validate(validateGoal),
			huh.NewInput().
				Title("Unit").
				Placeholder(constants.DefaultHabitUnit).
				Value(&f.Unit),
		),
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Repeat on").
				Options(dayOptions...).
				Value(&f.Days).
				Validate(func(days []int) error {
					if len(days) == 0 {
						return fmt.Errorf("pick at least one day")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Color").
				Options(colorOptions...).
				Value(&f.Color),
		),
	).WithShowHelp(true)
}

func validateGoal(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("goal must be a number greater than 0")
	}
	return nil
}

// buildHabit turns a completed form into a habit ready to store.
func buildHabit(f *HabitFormModel, existing []models.Habit, now time.Time) (models.Habit, error) {
	goal, err := strconv.ParseFloat(strings.TrimSpace(f.Goal), 64)
	if err != nil {
		return models.Habit{}, fmt.Errorf("invalid goal %q", f.Goal)
	}
	freq, err := models.ParseFrequencyDays(f.Days)
	if err != nil {
		return models.Habit{}, err
	}
	unit := strings.TrimSpace(f.Unit)
	if unit == "" {
		unit = constants.DefaultHabitUnit
	}

	h := models.Habit{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(f.Title),
		Goal:      goal,
		Unit:      unit,
		Frequency: freq,
		Type:      f.Type,
		Color:     f.Color,
		Icon:      "check",
		CreatedAt: now,
		Logs:      map[string]models.HabitLog{},
	}
	if err := validation.ValidateHabit(h, existing); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func newNoteForm(f *NoteFormModel, title, day string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Note for %s on %s", title, day)).
				CharLimit(constants.MaxNoteLength).
				Value(&f.Note).
				Validate(validation.ValidateNote),
		),
	).WithShowHelp(true)
}
