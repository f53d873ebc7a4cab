package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/utils"
)

var ErrInvalidHabit = errors.New("invalid habit")

// ValidateHabit checks a habit before it is created or edited. existing is
// the current habit list; the habit itself (matched by ID) is ignored when
// checking for a duplicate title.
func ValidateHabit(h models.Habit, existing []models.Habit) error {
	var problems []string

	title := strings.TrimSpace(h.Title)
	switch {
	case title == "":
		problems = append(problems, "title cannot be empty")
	case len([]rune(title)) > constants.MaxTitleLength:
		problems = append(problems, fmt.Sprintf("title cannot exceed %d characters", constants.MaxTitleLength))
	}
	if h.Goal <= 0 {
		problems = append(problems, "goal must be greater than 0")
	}
	if !h.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown type %q (expected count, check or time)", h.Type))
	}
	if h.Frequency.IsEmpty() {
		problems = append(problems, "frequency must include at least one weekday")
	}
	for _, other := range existing {
		if other.ID != h.ID && strings.EqualFold(strings.TrimSpace(other.Title), title) && title != "" {
			problems = append(problems, fmt.Sprintf("a habit named %q already exists", other.Title))
			break
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidHabit, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateNote checks a note's length.
func ValidateNote(note string) error {
	if len([]rune(note)) > constants.MaxNoteLength {
		return fmt.Errorf("note cannot exceed %d characters", constants.MaxNoteLength)
	}
	return nil
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTitle   ConflictType = "duplicate_title"
	ConflictDuplicateID      ConflictType = "duplicate_id"
	ConflictEmptyFrequency   ConflictType = "empty_frequency"
	ConflictInvalidGoal      ConflictType = "invalid_goal"
	ConflictInvalidType      ConflictType = "invalid_type"
	ConflictInvalidLogKey    ConflictType = "invalid_log_key"
	ConflictLogDateMismatch  ConflictType = "log_date_mismatch"
	ConflictCompletedNoValue ConflictType = "completed_without_value"
)

// Conflict represents a detected problem in stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	HabitID     string
	Date        string // YYYY-MM-DD (if applicable)
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator validates stored habits for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks a habit list for problems that the engine tolerates
// but that indicate damaged or hand-edited data.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	var result ValidationResult
	add := func(c Conflict) { result.Conflicts = append(result.Conflicts, c) }

	seenIDs := map[string]bool{}
	seenTitles := map[string]string{}

	for _, h := range habits {
		if seenIDs[h.ID] {
			add(Conflict{Type: ConflictDuplicateID, HabitID: h.ID,
				Description: fmt.Sprintf("habit ID %s appears more than once", h.ID)})
		}
		seenIDs[h.ID] = true

		key := strings.ToLower(strings.TrimSpace(h.Title))
		if firstID, ok := seenTitles[key]; ok {
			add(Conflict{Type: ConflictDuplicateTitle, HabitID: h.ID,
				Description: fmt.Sprintf("habit %q (%s) has the same title as %s", h.Title, h.ID, firstID)})
		} else {
			seenTitles[key] = h.ID
		}

		if h.Frequency.IsEmpty() {
			add(Conflict{Type: ConflictEmptyFrequency, HabitID: h.ID,
				Description: fmt.Sprintf("habit %q is never due (empty frequency)", h.Title)})
		}
		if h.Goal <= 0 {
			add(Conflict{Type: ConflictInvalidGoal, HabitID: h.ID,
				Description: fmt.Sprintf("habit %q has non-positive goal %g", h.Title, h.Goal)})
		}
		if !h.Type.Valid() {
			add(Conflict{Type: ConflictInvalidType, HabitID: h.ID,
				Description: fmt.Sprintf("habit %q has unknown type %q", h.Title, h.Type)})
		}

		days := make([]string, 0, len(h.Logs))
		for day := range h.Logs {
			days = append(days, day)
		}
		sort.Strings(days)

		for _, day := range days {
			l := h.Logs[day]
			if !utils.ValidateDateKey(day) {
				add(Conflict{Type: ConflictInvalidLogKey, HabitID: h.ID, Date: day,
					Description: fmt.Sprintf("habit %q has a log under malformed date %q", h.Title, day)})
				continue
			}
			if l.Date != day {
				add(Conflict{Type: ConflictLogDateMismatch, HabitID: h.ID, Date: day,
					Description: fmt.Sprintf("habit %q log %s records date %q", h.Title, day, l.Date)})
			}
			if l.Completed && l.Value == 0 && h.Goal > 0 {
				add(Conflict{Type: ConflictCompletedNoValue, HabitID: h.ID, Date: day,
					Description: fmt.Sprintf("habit %q is completed on %s with value 0", h.Title, day)})
			}
		}
	}

	return result
}

// AutoFixLogDates rewrites every log's Date to match its map key, which is
// the only conflict that can be repaired without guessing. It returns the
// fixed habits (copies) and the actions taken.
func AutoFixLogDates(conflicts []Conflict, habits []models.Habit) ([]models.Habit, []FixAction) {
	index := make(map[string]int, len(habits))
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
		index[h.ID] = i
	}

	var actions []FixAction
	for _, c := range conflicts {
		if c.Type != ConflictLogDateMismatch {
			continue
		}
		i, ok := index[c.HabitID]
		if !ok {
			continue
		}
		l, ok := out[i].Logs[c.Date]
		if !ok {
			continue
		}
		l.Date = c.Date
		out[i].Logs[c.Date] = l
		actions = append(actions, FixAction{
			Action:         fmt.Sprintf("Set log date for %q on %s", out[i].Title, c.Date),
			SourceConflict: c,
		})
	}

	return out, actions
}
