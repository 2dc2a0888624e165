package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/game/history"
	"github.com/cory-johannsen/rotz-assistant/internal/game/notes"
	"github.com/cory-johannsen/rotz-assistant/internal/game/tokens"
	"github.com/cory-johannsen/rotz-assistant/internal/persist"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
	"github.com/cory-johannsen/rotz-assistant/internal/storage"
)

// SaveTimeout bounds a single autosave.
const SaveTimeout = 5 * time.Second

// App owns every engine and store of one assistant session.
type App struct {
	Config config.Config
	Logger *zap.Logger

	Damage  *damage.Engine
	Health  *health.Tracker
	History *history.Log
	Tokens  *tokens.Store
	Notes   *notes.Pad
	Rules   *notes.Pad
	Sheets  *sheet.Store
	Presets *damage.PresetLibrary
	Roller  *dice.Roller

	kv storage.KV

	// Injected after construction. nil = no-op.
	OnSaveError func(error)
}

// NewApp builds the engines, restores every persisted store from kv and
// starts saving each store back to kv whenever it changes.
//
// Precondition: kv, rules, src and logger must be non-nil.
// Postcondition: Returns an App with restored state, or an error when kv
// cannot be read or holds state written by a newer build. A store that
// cannot be decoded is logged and starts empty.
func NewApp(ctx context.Context, cfg config.Config, kv storage.KV, rules damage.Ruleset, src dice.Source, logger *zap.Logger) (*App, error) {
	presets, err := damage.LoadPresets(cfg.Damage.Presets)
	if err != nil {
		return nil, err
	}
	roller := dice.NewLoggedRoller(src, logger)

	a := &App{
		Config:  cfg,
		Logger:  logger,
		History: history.NewLog(cfg.Dashboard.HistoryLimit, logger),
		Tokens:  tokens.NewStore(),
		Notes:   notes.NewPad(),
		Rules:   notes.NewPad(),
		Sheets:  sheet.NewStore(logger),
		Presets: presets,
		Roller:  roller,
		kv:      kv,
	}
	a.Damage = damage.NewEngine(rules, roller, logger, cfg.Damage.DefaultCritChance)
	a.Damage.Recorder = a.History
	a.Health = health.NewTracker(a.Damage, logger)

	if err := a.load(ctx); err != nil {
		return nil, err
	}
	a.bindAutosave()

	players, summons := a.Health.Len()
	logger.Info("assistant ready",
		zap.String("ruleset", a.Damage.Ruleset()),
		zap.Int("players", players),
		zap.Int("summons", summons),
		zap.Int("tokens", len(a.Tokens.List())),
		zap.Int("sheets", a.Sheets.Len()),
		zap.Int("presets", len(presets.All())),
	)
	return a, nil
}

func (a *App) load(ctx context.Context) error {
	errs := []error{
		restore(ctx, a, HealthCodec, a.Health.Restore, a.Health.Snapshot),
		restore(ctx, a, TokenCodec, a.Tokens.Restore, a.Tokens.List),
		restore(ctx, a, NotesCodec,
			func(s NotesState) { a.Notes.Set(s.Notes) },
			func() NotesState { return NotesState{Notes: a.Notes.Text()} }),
		restore(ctx, a, RulesCodec,
			func(s RulesState) { a.Rules.Set(s.Rules) },
			func() RulesState { return RulesState{Rules: a.Rules.Text()} }),
		restore(ctx, a, SheetCodec, a.Sheets.Restore, a.Sheets.Snapshot),
	}
	if a.Config.Damage.PersistSession {
		errs = append(errs, restore(ctx, a, DamageCodec, a.Damage.Restore, a.Damage.Snapshot))
	}
	return errors.Join(errs...)
}

// restore loads one store. Stores migrated from an older version are saved
// back immediately so the upgrade happens once.
func restore[T any](ctx context.Context, a *App, c persist.Codec[T], apply func(T), snapshot func() T) error {
	res, err := c.Load(ctx, a.kv)
	switch {
	case err == nil:
	case !res.Found, errors.Is(err, persist.ErrNewerVersion):
		return err
	default:
		a.Logger.Warn("discarding unreadable store", zap.String("key", c.Key), zap.Error(err))
		return nil
	}
	if !res.Found {
		return nil
	}
	apply(res.State)
	if !res.Migrated {
		return nil
	}
	a.Logger.Info("store migrated",
		zap.String("key", c.Key),
		zap.Int("from_version", res.FromVersion),
		zap.Int("to_version", c.Version),
	)
	if err := c.Save(ctx, a.kv, snapshot()); err != nil {
		return fmt.Errorf("saving migrated store: %w", err)
	}
	return nil
}

func (a *App) bindAutosave() {
	a.Health.OnChange = autosave(a, HealthCodec)
	a.Tokens.OnChange = autosave(a, TokenCodec)
	a.Sheets.OnChange = autosave(a, SheetCodec)
	saveNotes := autosave(a, NotesCodec)
	a.Notes.OnChange = func(text string) { saveNotes(NotesState{Notes: text}) }
	saveRules := autosave(a, RulesCodec)
	a.Rules.OnChange = func(text string) { saveRules(RulesState{Rules: text}) }
	if a.Config.Damage.PersistSession {
		a.Damage.OnChange = autosave(a, DamageCodec)
	}
}

func autosave[T any](a *App, c persist.Codec[T]) func(T) {
	return func(state T) {
		ctx, cancel := context.WithTimeout(context.Background(), SaveTimeout)
		defer cancel()
		if err := c.Save(ctx, a.kv, state); err != nil {
			a.Logger.Error("autosave failed", zap.String("key", c.Key), zap.Error(err))
			if a.OnSaveError != nil {
				a.OnSaveError(err)
			}
			return
		}
		a.Logger.Debug("store saved", zap.String("key", c.Key))
	}
}

// ApplySheet feeds the stats of the sheet matching ref into the damage
// calculator and the health tracker. An empty ref applies the active sheet.
func (a *App) ApplySheet(ref string) (sheet.Entry, error) {
	e, err := a.sheet(ref)
	if err != nil {
		return sheet.Entry{}, err
	}
	if err := sheet.Apply(e, a.Damage, a.Health); err != nil {
		return sheet.Entry{}, err
	}
	a.Logger.Info("sheet applied", zap.String("sheet", e.Name))
	return e, nil
}

// LoadRune loads a primary rune of the active sheet into the damage
// calculator and returns the rune's name as written on the sheet.
func (a *App) LoadRune(name string) (string, error) {
	e, err := a.sheet("")
	if err != nil {
		return "", err
	}
	return sheet.LoadRune(e, name, a.Damage)
}

// LoadPreset loads the library preset called name into the damage calculator.
func (a *App) LoadPreset(name string) (damage.Preset, error) {
	p, ok := a.Presets.Get(name)
	if !ok {
		return damage.Preset{}, fmt.Errorf("no preset named %q", name)
	}
	a.Damage.LoadPreset(p.Name, p.Apply(a.Damage.Snapshot().Config))
	return p, nil
}

func (a *App) sheet(ref string) (sheet.Entry, error) {
	if ref != "" {
		return a.Sheets.Find(ref)
	}
	e, ok := a.Sheets.Active()
	if !ok {
		return sheet.Entry{}, sheet.ErrSheetNotFound
	}
	return e, nil
}
