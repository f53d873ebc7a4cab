package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitpulse/internal/cli"
	"github.com/julianstephens/habitpulse/internal/storage/postgres"
	"github.com/julianstephens/habitpulse/internal/storage/sqlite"
)

// schemaStore is implemented by the SQL-backed stores.
type schemaStore interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current, latest int, err error)
}

var (
	_ schemaStore = (*sqlite.Store)(nil)
	_ schemaStore = (*postgres.Store)(nil)
)

var errNoSchema = errors.New("this store has no schema to migrate")

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return errNoSchema
	}

	var count int
	err := ctx.WithLock(func() error {
		var err error
		count, err = store.Migrate(func(msg string) {
			fmt.Println(msg)
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
