package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/logger"
)

var nowFunc = time.Now

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations for a file-backed store. SQLite
// databases are copied with VACUUM INTO; JSON stores are copied byte for
// byte after checking they parse.
type Manager struct {
	dataPath  string
	backupDir string
	suffix    string
}

// NewManager creates a new backup manager. Backups live in a "backups"
// directory next to the data file and share its extension.
func NewManager(dataPath string) *Manager {
	suffix := filepath.Ext(dataPath)
	if suffix == "" {
		suffix = ".db"
	}
	return &Manager{
		dataPath:  dataPath,
		backupDir: filepath.Join(filepath.Dir(dataPath), constants.BackupDirName),
		suffix:    suffix,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) isJSON() bool {
	return strings.EqualFold(m.suffix, ".json")
}

// ensureBackupDir creates the backup directory if it doesn't exist
func (m *Manager) ensureBackupDir() error {
	return os.MkdirAll(m.backupDir, 0700)
}

// CreateBackup creates a new backup of the data file
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// createBackup creates a new backup of the data file
// skipRotation parameter is used to prevent recursive backup creation during restore
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := m.ensureBackupDir(); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.dataPath); os.IsNotExist(err) {
		return "", fmt.Errorf("data file does not exist: %s", m.dataPath)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if m.isJSON() {
		if err := verifyJSON(m.dataPath); err != nil {
			return "", fmt.Errorf("refusing to back up unreadable data file: %w", err)
		}
		err = copyFile(m.dataPath, backupPath)
	} else {
		err = m.backupDatabase(backupPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up data file: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	logger.Debug("Backup created", "path", backupPath)
	return backupPath, nil
}

// nextBackupPath picks a filename with minute precision, falling back to
// seconds and then a counter when that name is already taken.
func (m *Manager) nextBackupPath() (string, error) {
	now := nowFunc()
	timestamp := now.Format("20060102-1504")
	backupPath := filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp+m.suffix)

	if _, err := os.Stat(backupPath); err != nil {
		return backupPath, nil
	}

	timestamp = now.Format("20060102-150405")
	backupPath = filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp+m.suffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			return backupPath, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		name := fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, timestamp, counter, m.suffix)
		backupPath = filepath.Join(m.backupDir, name)
	}
}

// backupDatabase writes a consistent copy of the SQLite database to destPath
func (m *Manager) backupDatabase(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.dataPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	// VACUUM INTO needs SQLite 3.27+; fall back to a plain copy.
	if _, err = srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		srcDB.Close()
		return copyFile(m.dataPath, destPath)
	}

	return nil
}

// ListBackups returns a list of all available backups, sorted by timestamp (newest first)
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}

		timestamp, ok := parseBackupName(name, m.suffix)
		if !ok {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Timestamp: timestamp,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// parseBackupName extracts the timestamp from a backup filename of the form
// prefix + YYYYMMDD-HHMM[SS][-N] + suffix.
func parseBackupName(name, suffix string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), suffix)

	// A trailing counter is all digits and never 4 or 6 long like a time.
	parts := strings.Split(stamp, "-")
	if len(parts) > 2 {
		last := parts[len(parts)-1]
		if len(last) != 4 && len(last) != 6 && isDigits(last) {
			stamp = strings.Join(parts[:len(parts)-1], "-")
		}
	}

	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if ts, err := time.Parse(layout, stamp); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	if len(backups) <= constants.MaxBackups {
		return nil
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}

	return nil
}

// RestoreBackup replaces the data file with the given backup. When a data
// file already exists it is backed up first; that backup's path is returned
// (empty when there was nothing to save).
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var preRestore string
	if _, err := os.Stat(m.dataPath); err == nil {
		preRestore, err = m.createBackup(true)
		if err != nil {
			return "", fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		logger.Info("Backed up current data before restore", "path", preRestore)
	}

	tempPath := m.dataPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return "", fmt.Errorf("failed to copy backup file: %w", err)
	}

	if err := os.Rename(tempPath, m.dataPath); err != nil {
		if removeErr := os.Remove(tempPath); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
		}
		return "", fmt.Errorf("failed to restore data file: %w", err)
	}

	return preRestore, nil
}

// verifyBackup checks that a backup file can be read as this manager's format
func (m *Manager) verifyBackup(path string) error {
	if m.isJSON() {
		return verifyJSON(path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func verifyJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["habits"]; !ok {
		return fmt.Errorf("missing habits")
	}
	return nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
