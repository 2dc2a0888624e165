package assistant

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/storage"
)

// ProviderSet builds an App from a Config and a logger.
var ProviderSet = wire.NewSet(ProvideStorage, ProvideRuleset, ProvideSource, NewApp)

// ProvideStorage opens the configured storage. The cleanup closes it.
func ProvideStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.KV, func(), error) {
	kv, err := OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("closing storage", zap.Error(err))
		}
	}
	return kv, cleanup, nil
}

// ProvideRuleset builds the configured damage ruleset.
func ProvideRuleset(cfg config.Config, logger *zap.Logger) (damage.Ruleset, error) {
	return NewRuleset(cfg.Damage, logger)
}

// ProvideSource returns the cryptographically seeded dice source.
func ProvideSource() dice.Source {
	return dice.NewCryptoSource()
}
