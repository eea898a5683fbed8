// Package migrations embeds the SQL schema for each supported store.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Directories inside FS, one per backend.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Source returns a migrate source reading the embedded files in dir.
func Source(dir string) (source.Driver, error) {
	d, err := iofs.New(FS, dir)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	return d, nil
}

// Apply runs all pending up migrations, or rolls back a single step when down is set.
func Apply(m *migrate.Migrate, down bool) error {
	var err error
	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
