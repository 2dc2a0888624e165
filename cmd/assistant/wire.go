//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/config"
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*assistant.App, func(), error) {
	wire.Build(assistant.ProviderSet)
	return nil, nil, nil
}
