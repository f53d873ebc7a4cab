package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
)

const habitColumns = `id, title, description, goal, unit, frequency, type, color, icon, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency int
	var habitType, createdAt string

	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Goal, &h.Unit, &frequency, &habitType, &h.Color, &h.Icon, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = models.Frequency(frequency) & models.FrequencyDaily
	h.Type = models.HabitType(habitType)
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.Logs = map[string]models.HabitLog{}
	return h, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Title, habit.Description, habit.Goal, habit.Unit, int(habit.Frequency),
		string(habit.Type), habit.Color, habit.Icon, habit.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	if err := insertLogs(tx, habit); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, err
	}
	if err := s.loadLogs(&h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetHabitByTitle(title string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE title = ? COLLATE NOCASE`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, err
	}
	if err := s.loadLogs(&h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query(`SELECT ` + habitColumns + ` FROM habits ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	index := map[string]int{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logRows, err := s.db.Query(`SELECT habit_id, day, value, completed, note FROM habit_logs`)
	if err != nil {
		return nil, err
	}
	defer logRows.Close()

	for logRows.Next() {
		var habitID string
		var l models.HabitLog
		if err := logRows.Scan(&habitID, &l.Date, &l.Value, &l.Completed, &l.Note); err != nil {
			return nil, err
		}
		if i, ok := index[habitID]; ok {
			habits[i].Logs[l.Date] = l
		}
	}

	return habits, logRows.Err()
}

func (s *Store) loadLogs(h *models.Habit) error {
	rows, err := s.db.Query(`SELECT day, value, completed, note FROM habit_logs WHERE habit_id = ?`, h.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l models.HabitLog
		if err := rows.Scan(&l.Date, &l.Value, &l.Completed, &l.Note); err != nil {
			return err
		}
		h.Logs[l.Date] = l
	}
	return rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE habits SET
			title = ?, description = ?, goal = ?, unit = ?, frequency = ?,
			type = ?, color = ?, icon = ?
		WHERE id = ?`,
		habit.Title, habit.Description, habit.Goal, habit.Unit, int(habit.Frequency),
		string(habit.Type), habit.Color, habit.Icon, habit.ID)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, storage.ErrNotFound)
	}

	if _, err := tx.Exec(`DELETE FROM habit_logs WHERE habit_id = ?`, habit.ID); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	if err := insertLogs(tx, habit); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM habit_logs WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete logs: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}

	return tx.Commit()
}

func (s *Store) LoadSnapshot() (models.Snapshot, error) {
	habits, err := s.GetAllHabits()
	if err != nil {
		return models.Snapshot{}, err
	}
	profile, err := s.GetProfile()
	if errors.Is(err, storage.ErrNotFound) {
		profile = models.DefaultProfile()
	} else if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Habits: habits, Profile: profile}, nil
}

func (s *Store) SaveSnapshot(snap models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM habit_logs`); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM habits`); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	for _, h := range snap.Habits {
		_, err := tx.Exec(`INSERT INTO habits (`+habitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Title, h.Description, h.Goal, h.Unit, int(h.Frequency),
			string(h.Type), h.Color, h.Icon, h.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
		}
		if err := insertLogs(tx, h); err != nil {
			return err
		}
	}

	if err := saveProfile(tx, snap.Profile); err != nil {
		return err
	}

	return tx.Commit()
}

func insertLogs(tx *sql.Tx, habit models.Habit) error {
	if len(habit.Logs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO habit_logs (habit_id, day, value, completed, note) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare log insert: %w", err)
	}
	defer stmt.Close()

	for day, l := range habit.Logs {
		if _, err := stmt.Exec(habit.ID, day, l.Value, l.Completed, l.Note); err != nil {
			return fmt.Errorf("failed to insert log %s for habit %s: %w", day, habit.ID, err)
		}
	}
	return nil
}
