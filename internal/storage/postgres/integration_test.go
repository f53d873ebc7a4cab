package postgres

import (
	"os"
	"testing"

	"github.com/julianstephens/habitpulse/internal/models"
	"github.com/julianstephens/habitpulse/internal/storage"
	"github.com/julianstephens/habitpulse/internal/storage/storagetest"
)

// Set HABITPULSE_TEST_POSTGRES to run these tests against a real database.
// Example: HABITPULSE_TEST_POSTGRES="postgres://habitpulse@localhost:5432/habitpulse_test?sslmode=disable"
func integrationConnString(t *testing.T) string {
	t.Helper()
	connStr := os.Getenv("HABITPULSE_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("HABITPULSE_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}
	return connStr
}

func TestStore_Integration(t *testing.T) {
	connStr := integrationConnString(t)

	storagetest.Run(t, func(t *testing.T) storage.Provider {
		store := New(connStr)
		if err := store.Init(); err != nil {
			t.Fatalf("Failed to initialize store: %v", err)
		}
		// Every subtest starts from an empty database with the default profile.
		if err := store.SaveSnapshot(models.Snapshot{Profile: models.DefaultProfile()}); err != nil {
			t.Fatalf("Failed to reset store: %v", err)
		}
		return store
	})
}

func TestStore_IntegrationSchemaStatus(t *testing.T) {
	store := New(integrationConnString(t))
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	current, latest, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if current != latest {
		t.Errorf("schema = %d/%d after Init, want up to date", current, latest)
	}
}
