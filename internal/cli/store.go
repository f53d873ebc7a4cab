package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitpulse/internal/config"
	herrors "github.com/julianstephens/habitpulse/internal/errors"
	"github.com/julianstephens/habitpulse/internal/logger"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/storage/postgres"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

const credentialsHint = "Keep passwords out of --config. Use HABITPULSE_DB_CONNECTION, a .pgpass file, or 'habitpulse keyring set' with '--config keyring'."

// OpenStore returns the storage backend for a --config value: a PostgreSQL
// URL or keyword, a .json file, or a SQLite file. The store is not loaded.
func OpenStore(value string) (storage.Provider, error) {
	switch config.Detect(value) {
	case config.BackendPostgres:
		connStr, source, err := config.ConnectionString(value)
		if err != nil {
			if errors.Is(err, config.ErrNoConnectionString) {
				return nil, herrors.WithHint(err, "Set HABITPULSE_DB_CONNECTION or run 'habitpulse keyring set <connection-string>'.")
			}
			return nil, err
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			// Passwords are only refused on the command line, where they
			// would leak into shell history.
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) || source == config.SourceFlag {
				return nil, herrors.WithHint(err, credentialsHint)
			}
		}
		logger.Debug("Using PostgreSQL store", "source", source)
		return postgres.New(connStr), nil
	case config.BackendJSON:
		path, err := config.ExpandPath(value)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		return storage.NewJSONStore(path), nil
	default:
		path, err := config.ExpandPath(value)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		return sqlite.NewStore(path), nil
	}
}
