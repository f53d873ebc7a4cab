package backups

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitpulse/internal/backup"
	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/config"
	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/logger"
)

var errPostgresBackups = errors.New("backups are only available for file-based stores; use pg_dump for PostgreSQL")

func manager(ctx *cli.Context) (*backup.Manager, error) {
	path := ctx.Store.GetConfigPath()
	if config.Detect(path) == config.BackendPostgres {
		return nil, errPostgresBackups
	}
	return backup.NewManager(path), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s\n", filepath.Base(backupPath))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		timestamp := b.Timestamp.Format("2006-01-02 15:04:05")
		fmt.Printf("  %s  %s  (%.1f KB)\n", timestamp, filepath.Base(b.Path), sizeKB)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.GetBackupDir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

// resolveBackupPath accepts an absolute path, a path relative to the working
// directory, or a bare filename inside the backup directory.
func resolveBackupPath(mgr *backup.Manager, ref string) (string, error) {
	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); os.IsNotExist(err) {
			return "", fmt.Errorf("backup file not found: %s", ref)
		}
		return ref, nil
	}
	if _, err := os.Stat(ref); err == nil {
		abs, err := filepath.Abs(ref)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	candidate := filepath.Join(mgr.GetBackupDir(), ref)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.GetBackupDir())
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backupPath, err := resolveBackupPath(mgr, c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace your current habit data with the backup.")
		fmt.Println("A backup of your current data will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", backupPath)
		fmt.Print("Continue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	// The lock keeps a running TUI from writing while the file is swapped.
	return ctx.WithLock(func() error {
		if err := ctx.Store.Close(); err != nil {
			logger.Warn("Failed to close store before restore", "error", err)
		}

		preRestore, err := mgr.RestoreBackup(backupPath)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		if preRestore != "" {
			fmt.Printf("Created backup of current data: %s\n", filepath.Base(preRestore))
		}
		fmt.Println("✓ Data restored successfully!")
		return nil
	})
}
