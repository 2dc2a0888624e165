// Package assistant composes the calculators, trackers and stores into one
// application and keeps them saved to the configured key-value store.
package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/scripting"
	"github.com/cory-johannsen/rotz-assistant/internal/storage"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/memory"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/postgres"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/sqlite"
)

// Storage drivers accepted by OpenStorage.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenStorage opens the key-value backend selected by cfg.Driver.
//
// Postcondition: Returns an open, migrated store or a non-nil error.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.KV, error) {
	switch cfg.Driver {
	case DriverMemory:
		logger.Info("memory storage opened, nothing will be kept after exit")
		return memory.New(), nil
	case DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// NewRuleset returns the damage ruleset named by cfg.Ruleset. The script
// ruleset compiles cfg.Script.
//
// Postcondition: Returns a non-nil Ruleset or a non-nil error.
func NewRuleset(cfg config.DamageConfig, logger *zap.Logger) (damage.Ruleset, error) {
	if cfg.Ruleset != damage.RulesetScript {
		return damage.RulesetByName(cfg.Ruleset)
	}
	r, err := scripting.LoadRuleset(cfg.Script, cfg.InstructionLimit, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("script ruleset loaded", zap.String("script", r.Script()))
	return r, nil
}
