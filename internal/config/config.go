// Package config resolves where habit data lives and how to reach it. Values
// come from flags, the process environment, and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/habitpulse/internal/constants"
	"github.com/julianstephens/habitpulse/internal/keyring"
)

// Backend identifies a storage implementation.
type Backend int

const (
	BackendSQLite Backend = iota
	BackendJSON
	BackendPostgres
)

func (b Backend) String() string {
	switch b {
	case BackendJSON:
		return "json"
	case BackendPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Source records where a PostgreSQL connection string came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

// ErrNoConnectionString is returned when the postgres backend is selected by
// name but no connection string is configured anywhere.
var ErrNoConnectionString = errors.New("no PostgreSQL connection string configured")

// postgresKeywords select the postgres backend without an inline URL.
var postgresKeywords = map[string]bool{"postgres": true, "postgresql": true, "keyring": true}

// Detect returns the backend a --config value refers to.
func Detect(value string) Backend {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"), postgresKeywords[lower]:
		return BackendPostgres
	case strings.HasSuffix(lower, ".json"):
		return BackendJSON
	default:
		return BackendSQLite
	}
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Dir returns the directory that holds logs, backups and the lockfile for a
// --config value. File-backed stores use the file's directory; PostgreSQL uses
// the default config directory.
func Dir(value string) (string, error) {
	if Detect(value) == BackendPostgres {
		value = constants.DefaultConfigPath
	}
	path, err := ExpandPath(value)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// LoadDotEnv loads .env files from each directory in order. Variables already
// present in the environment are never overridden, and a missing file is not
// an error. It returns the files that were loaded.
func LoadDotEnv(dirs ...string) ([]string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, constants.DotEnvFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ConnectionString resolves the PostgreSQL connection string for a --config
// value. An inline URL wins; otherwise HABITPULSE_DB_CONNECTION, then the OS
// keyring.
func ConnectionString(value string) (string, Source, error) {
	v := strings.TrimSpace(value)
	if !postgresKeywords[strings.ToLower(v)] {
		return v, SourceFlag, nil
	}

	if env := getEnv(constants.EnvDBConnection, ""); env != "" {
		return env, SourceEnv, nil
	}

	connStr, err := keyring.GetConnectionString()
	if err == nil {
		return connStr, SourceKeyring, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", "", ErrNoConnectionString
	}
	return "", "", fmt.Errorf("%w: %v", ErrNoConnectionString, err)
}

// DebugFromEnv reports whether HABITPULSE_DEBUG is set to a true value.
func DebugFromEnv() bool {
	return getEnvAsBool(constants.EnvDebug, false)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
