package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/migration"
	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed the profile row on first init only
	if _, err := s.GetProfile(); errors.Is(err, storage.ErrNotFound) {
		if err := s.SaveProfile(models.DefaultProfile()); err != nil {
			return fmt.Errorf("failed to save default profile: %w", err)
		}
	} else if err != nil {
		return err
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	s.db = db

	// Validate schema version using embedded migrations
	if err := s.validateSchemaVersion(); err != nil {
		return err
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps PRAGMAs and transactions on the same handle.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(func(msg string) {
		logger.Info(msg)
	})
	return err
}

func (s *Store) validateSchemaVersion() error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

// Migrate applies pending migrations to an existing database.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return 0, storage.ErrNotInitialized
		}
		db, err := s.open()
		if err != nil {
			return 0, err
		}
		s.db = db
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(logFn)
}

// SchemaStatus reports the current and latest schema versions.
func (s *Store) SchemaStatus() (current, latest int, err error) {
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	return runner.Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
// Callers should use Load() before calling this method.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) GetProfile() (models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow("SELECT name, avatar FROM profile WHERE id = 1").Scan(&p.Name, &p.Avatar)
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

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveProfile(db execer, p models.Profile) error {
	_, err := db.Exec(`
		INSERT INTO profile (id, name, avatar) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar = excluded.avatar`,
		p.Name, p.Avatar)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
