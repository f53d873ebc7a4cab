package system

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/utils"
	"github.com/julianstephens/habitpulse/internal/validation"
)

type ImportCmd struct {
	File   string `arg:"" help:"Exported habits file (a JSON array of habits or an object with a \"habits\" key)." type:"existingfile"`
	DryRun bool   `help:"Validate and report without writing."`
}

// parseExport accepts either a bare array of habits or an object wrapping
// them under "habits".
func parseExport(data []byte) ([]models.Habit, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("import file is empty")
	}

	var habits []models.Habit
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &habits); err != nil {
			return nil, fmt.Errorf("failed to parse habits: %w", err)
		}
		return habits, nil
	}

	var wrapper struct {
		Habits []models.Habit `json:"habits"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse habits: %w", err)
	}
	if wrapper.Habits == nil {
		return nil, fmt.Errorf("import file has no \"habits\" key")
	}
	return wrapper.Habits, nil
}

// normalize fills fields an export may omit and checks every log.
func normalize(ctx *cli.Context, h models.Habit) (models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = ctx.Scheduler.Now()
	}
	logs := make(map[string]models.HabitLog, len(h.Logs))
	for key, l := range h.Logs {
		if !utils.ValidateDateKey(key) {
			return h, fmt.Errorf("habit %q: invalid log date %q", h.Title, key)
		}
		if err := validation.ValidateNote(l.Note); err != nil {
			return h, fmt.Errorf("habit %q log %s: %w", h.Title, key, err)
		}
		l.Date = key
		logs[key] = l
	}
	h.Logs = logs
	return h, nil
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	imported, err := parseExport(data)
	if err != nil {
		return err
	}

	existing, err := ctx.LoadHabits()
	if err != nil {
		return err
	}

	merged := make([]models.Habit, len(existing))
	copy(merged, existing)
	index := make(map[string]int, len(merged))
	for i, h := range merged {
		index[h.ID] = i
	}

	updates := make(map[string]bool, len(imported))
	seen := make(map[string]bool, len(imported))
	for i := range imported {
		h, err := normalize(ctx, imported[i])
		if err != nil {
			return err
		}
		if seen[h.ID] {
			return fmt.Errorf("import file lists habit %s more than once", h.ID)
		}
		seen[h.ID] = true
		imported[i] = h
		if j, ok := index[h.ID]; ok {
			merged[j] = h
			updates[h.ID] = true
			continue
		}
		index[h.ID] = len(merged)
		merged = append(merged, h)
	}

	for _, h := range imported {
		if err := validation.ValidateHabit(h, merged); err != nil {
			return fmt.Errorf("habit %q: %w", h.Title, err)
		}
	}

	added := len(imported) - len(updates)
	if c.DryRun {
		fmt.Printf("Would import %d habits (%d new, %d updated)\n", len(imported), added, len(updates))
		return nil
	}

	err = ctx.WithLock(func() error {
		for _, h := range imported {
			if updates[h.ID] {
				if err := ctx.Store.UpdateHabit(h); err != nil {
					return fmt.Errorf("failed to update habit %q: %w", h.Title, err)
				}
				continue
			}
			if err := ctx.Store.AddHabit(h); err != nil {
				return fmt.Errorf("failed to add habit %q: %w", h.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Imported habits", "file", c.File, "added", added, "updated", len(updates))
	fmt.Printf("Imported %d habits (%d new, %d updated)\n", len(imported), added, len(updates))
	return nil
}
