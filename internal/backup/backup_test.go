package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitpulse/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE test_data (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO test_data (id, name) VALUES (1, 'a'), (2, 'b')"); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}

	return dbPath
}

// withClock makes nowFunc advance one minute per call starting at start.
func withClock(t *testing.T, start time.Time) {
	t.Helper()
	current := start
	nowFunc = func() time.Time {
		now := current
		current = current.Add(time.Minute)
		return now
	}
	t.Cleanup(func() { nowFunc = time.Now })
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test_data").Scan(&count); err != nil {
		t.Fatalf("failed to count rows in %s: %v", path, err)
	}
	return count
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	withClock(t, time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC))

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if filepath.Base(backupPath) != "habitpulse-20240605-0930.db" {
		t.Errorf("backup name = %s", filepath.Base(backupPath))
	}
	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup dir = %s", filepath.Dir(backupPath))
	}
	if got := countRows(t, backupPath); got != 2 {
		t.Errorf("expected 2 rows in backup, got %d", got)
	}
}

func TestCreateBackupMissingSource(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error for missing data file")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	withClock(t, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))

	mgr := NewManager(dbPath)
	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backup %d is newer than backup %d", i, i-1)
		}
	}
	// The five oldest (09:00 to 09:04) were rotated away.
	if oldest := backups[len(backups)-1].Timestamp; oldest.Minute() != 5 {
		t.Errorf("oldest kept backup = %v, want 09:05", oldest)
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	withClock(t, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "habitpulse-garbage.db"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Path == "" || b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	withClock(t, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC))
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO test_data (id, name) VALUES (3, 'c')"); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}
	db.Close()

	if got := countRows(t, dbPath); got != 3 {
		t.Fatalf("expected 3 rows before restore, got %d", got)
	}

	preRestore, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if got := countRows(t, dbPath); got != 2 {
		t.Errorf("expected 2 rows after restore, got %d", got)
	}
	if preRestore == "" {
		t.Fatal("expected a pre-restore backup path")
	}
	if got := countRows(t, preRestore); got != 3 {
		t.Errorf("pre-restore backup has %d rows, want 3", got)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups after restore, got %d", len(backups))
	}
}

func TestVerifyBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := mgr.verifyBackup(backupPath); err != nil {
		t.Errorf("verifyBackup failed for valid backup: %v", err)
	}

	invalidPath := filepath.Join(mgr.GetBackupDir(), "invalid.db")
	if err := os.WriteFile(invalidPath, []byte("not a database"), 0600); err != nil {
		t.Fatalf("failed to create invalid file: %v", err)
	}
	if err := mgr.verifyBackup(invalidPath); err == nil {
		t.Error("verifyBackup should fail for invalid backup")
	}
	if _, err := mgr.RestoreBackup(invalidPath); err == nil {
		t.Error("RestoreBackup should refuse an invalid backup")
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = time.Now })

	mgr := NewManager(dbPath)
	paths := make(map[string]bool)
	for i := 0; i < 5; i++ {
		backupPath, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		name := filepath.Base(backupPath)
		if paths[name] {
			t.Errorf("duplicate backup filename: %s", name)
		}
		paths[name] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 5 {
		t.Errorf("ListBackups found %d backups, want 5", len(backups))
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"habitpulse-20240605-0930.db", true, time.Date(2024, 6, 5, 9, 30, 0, 0, time.UTC)},
		{"habitpulse-20240605-093015.db", true, time.Date(2024, 6, 5, 9, 30, 15, 0, time.UTC)},
		{"habitpulse-20240605-093015-3.db", true, time.Date(2024, 6, 5, 9, 30, 15, 0, time.UTC)},
		{"habitpulse-yesterday.db", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBackupName(tt.name, ".db")
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("parseBackupName(%q) = %v, %v; want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}
