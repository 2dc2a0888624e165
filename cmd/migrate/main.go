// Package main provides a database migration runner for the configured
// storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/migrations"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/postgres"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrator(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	if err := migrations.Run(m, *direction, *steps); err != nil {
		log.Fatal(err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("reading version: %v", err)
	}
	fmt.Fprintf(os.Stdout, "%s storage migrated %s to version=%d dirty=%v [%s]\n",
		cfg.Storage.Driver, *direction, version, dirty, time.Since(start))
}

// migrator binds a golang-migrate instance to the configured backend. Opening
// a SQLite store applies pending migrations first, so a down run starts from
// the latest version.
func migrator(ctx context.Context, cfg config.StorageConfig) (*migrate.Migrate, error) {
	switch cfg.Driver {
	case assistant.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Path, zap.NewNop())
		if err != nil {
			return nil, err
		}
		return s.Migrator()
	case assistant.DriverPostgres:
		return postgres.NewMigrator(cfg.Database.DSN())
	}
	return nil, fmt.Errorf("storage driver %q has no migrations", cfg.Driver)
}
