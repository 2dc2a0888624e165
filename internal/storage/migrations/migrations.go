// Package migrations embeds the key-value schema for every SQL dialect and
// runs it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dialects with an embedded schema.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Source returns the embedded migration source for dialect.
//
// Postcondition: Returns an open source.Driver or an error for unknown dialects.
func Source(dialect string) (source.Driver, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("opening %s migrations: %w", dialect, err)
	}
	return src, nil
}

// Run migrates m in direction "up" or "down". steps > 0 limits the number of
// migrations applied; 0 applies all of them.
//
// Postcondition: migrate.ErrNoChange is reported as nil.
func Run(m *migrate.Migrate, direction string, steps int) error {
	var err error
	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
