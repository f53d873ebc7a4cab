package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
)

const habitColumns = `id, title, description, goal, unit, frequency, type, color, icon, created_at`

const insertHabitSQL = `INSERT INTO habits (` + habitColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

type rowScanner interface {
	Scan(dest ...any) error
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency int
	var habitType string

	err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Goal, &h.Unit, &frequency, &habitType, &h.Color, &h.Icon, &h.CreatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.Frequency = models.Frequency(frequency) & models.FrequencyDaily
	h.Type = models.HabitType(habitType)
	h.Logs = map[string]models.HabitLog{}
	return h, nil
}

func insertHabit(db execer, h models.Habit) error {
	_, err := db.Exec(insertHabitSQL,
		h.ID, h.Title, h.Description, h.Goal, h.Unit, int(h.Frequency),
		string(h.Type), h.Color, h.Icon, h.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
	}
	return insertLogs(db, h)
}

func insertLogs(db execer, h models.Habit) error {
	for day, l := range h.Logs {
		_, err := db.Exec(`INSERT INTO habit_logs (habit_id, day, value, completed, note) VALUES ($1, $2, $3, $4, $5)`,
			h.ID, day, l.Value, l.Completed, l.Note)
		if err != nil {
			return fmt.Errorf("failed to insert log %s for habit %s: %w", day, h.ID, err)
		}
	}
	return nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertHabit(tx, habit); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, err
	}
	return h, s.loadLogs(&h)
}

func (s *Store) GetHabitByTitle(title string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE lower(title) = lower($1)`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return models.Habit{}, err
	}
	return h, s.loadLogs(&h)
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
		var day time.Time
		var l models.HabitLog
		if err := logRows.Scan(&habitID, &day, &l.Value, &l.Completed, &l.Note); err != nil {
			return nil, err
		}
		l.Date = day.Format(constants.DateFormat)
		if i, ok := index[habitID]; ok {
			habits[i].Logs[l.Date] = l
		}
	}
	return habits, logRows.Err()
}

func (s *Store) loadLogs(h *models.Habit) error {
	rows, err := s.db.Query(`SELECT day, value, completed, note FROM habit_logs WHERE habit_id = $1`, h.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var day time.Time
		var l models.HabitLog
		if err := rows.Scan(&day, &l.Value, &l.Completed, &l.Note); err != nil {
			return err
		}
		l.Date = day.Format(constants.DateFormat)
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
			title = $1, description = $2, goal = $3, unit = $4, frequency = $5,
			type = $6, color = $7, icon = $8
		WHERE id = $9`,
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

	if _, err := tx.Exec(`DELETE FROM habit_logs WHERE habit_id = $1`, habit.ID); err != nil {
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

	if _, err := tx.Exec(`DELETE FROM habit_logs WHERE habit_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete logs: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM habits WHERE id = $1`, id)
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
		if err := insertHabit(tx, h); err != nil {
			return err
		}
	}
	if err := saveProfile(tx, snap.Profile); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetProfile() (models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(`SELECT name, avatar FROM profile WHERE id = 1`).Scan(&p.Name, &p.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, fmt.Errorf("profile: %w", storage.ErrNotFound)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfile(p models.Profile) error {
	return saveProfile(s.db, p)
}

func saveProfile(db execer, p models.Profile) error {
	_, err := db.Exec(`
		INSERT INTO profile (id, name, avatar) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar = EXCLUDED.avatar`,
		p.Name, p.Avatar)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
