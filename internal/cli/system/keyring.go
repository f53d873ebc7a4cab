package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/keyring"
	"github.com/julianstephens/habitpulse/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check whether the OS keyring is usable."`
}

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func isPostgresConnString(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=")
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !isPostgresConnString(cmd.ConnectionString) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so an embedded password is tolerated here.
		fmt.Println("⚠️  Warning: Connection string contains a password.")
		fmt.Println("   It will be stored in the encrypted OS keyring. Consider .pgpass if you prefer to keep it separate.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println("✓ Connection string stored in OS keyring")
	fmt.Println("  Use it with: habitpulse --config keyring")
	return nil
}

// KeyringGetCmd retrieves database connection credentials from the OS keyring
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'habitpulse keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println(maskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	available, stored := keyring.Status()
	if !available {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	fmt.Println("✓ OS keyring is available")
	if stored {
		fmt.Println("✓ Connection string is stored in keyring")
	} else {
		fmt.Println("ℹ No connection string stored in keyring")
	}
	return nil
}

// maskPassword hides the password in a URL or key=value connection string.
func maskPassword(connStr string) string {
	lower := strings.ToLower(connStr)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		schemeEnd := strings.Index(connStr, "://") + 3
		rest := connStr[schemeEnd:]
		// The last @ separates user info from the host; passwords may contain @.
		at := strings.LastIndex(rest, "@")
		if at == -1 {
			return connStr
		}
		userInfo := rest[:at]
		colon := strings.Index(userInfo, ":")
		if colon == -1 {
			return connStr
		}
		return connStr[:schemeEnd] + userInfo[:colon] + ":****" + rest[at:]
	}

	fields := strings.Fields(connStr)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
