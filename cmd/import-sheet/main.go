// Package main imports a character sheet file into the configured store
// without starting the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	file := flag.String("file", "", "path to a markdown or JSON character sheet")
	use := flag.Bool("use", false, "make the imported sheet the active one")
	apply := flag.Bool("apply", false, "track the sheet's character in the health roster")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import-sheet -file <path> [-config <path>] [-use] [-apply]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver == assistant.DriverMemory {
		fmt.Fprintln(os.Stderr, "memory storage keeps nothing; configure sqlite or postgres")
		os.Exit(1)
	}

	start := time.Now()
	if err := run(context.Background(), cfg, *file, *use, *apply); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}

func run(ctx context.Context, cfg config.Config, file string, use, apply bool) error {
	logger := zap.NewNop()
	kv, err := assistant.OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	// Only the sheet store and roster are saved, so the fixed ruleset and
	// dice source are never used.
	app, err := assistant.NewApp(ctx, cfg, kv, damage.AccuracyRuleset{}, dice.NewCryptoSource(), logger)
	if err != nil {
		return err
	}
	var saveErr error
	app.OnSaveError = func(err error) { saveErr = err }

	e, err := app.Sheets.ImportFile(file)
	if err != nil {
		return err
	}
	fmt.Printf("imported %s (%s) as %s\n", e.Name, e.Format, e.ID)

	if use {
		if err := app.Sheets.SetActive(e.ID); err != nil {
			return err
		}
	}
	if apply {
		if _, err := app.ApplySheet(e.ID.String()); err != nil {
			return fmt.Errorf("applying %s: %w", e.Name, err)
		}
		fmt.Printf("%s added to the roster\n", e.Name)
	}
	if saveErr != nil {
		return fmt.Errorf("saving: %w", saveErr)
	}
	return nil
}
