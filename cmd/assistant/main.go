// Package main provides the assistant binary: the terminal dashboard over the
// damage calculator, health tracker and session stores.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/dashboard"
	"github.com/cory-johannsen/rotz-assistant/internal/lifecycle"
	"github.com/cory-johannsen/rotz-assistant/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and ROTZ_ environment")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing assistant", zap.Error(err))
	}
	defer cleanup()

	logger.Info("starting assistant",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("ruleset", app.Damage.Ruleset()),
		zap.Duration("startup", time.Since(start)),
	)

	lc := lifecycle.NewLifecycle(logger)
	lc.Add("dashboard", dashboard.NewService(app, cfg.Dashboard))
	if err := lc.Run(ctx); err != nil {
		logger.Error("assistant stopped with error", zap.Error(err))
		return
	}
	logger.Info("assistant stopped", zap.Duration("uptime", time.Since(start)))
}
