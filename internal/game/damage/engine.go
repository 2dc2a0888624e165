package damage

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// State is a snapshot of everything the engine owns.
type State struct {
	AttackName string `json:"attackName"`
	Config     Config `json:"numbers"`
	Result     Result `json:"result"`
	CustomHit  int    `json:"customHit"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Result = s.Result.Clone()
	return s
}

// Recorder receives every successful roll.
type Recorder interface {
	Record(name string, cfg Config, res Result)
}

// Engine owns the attack configuration and the latest roll result.
//
// All methods are safe for concurrent use. Readers always receive a copy of a
// complete state, never a partially updated one.
type Engine struct {
	mu       sync.RWMutex
	rules    Ruleset
	src      dice.Source
	logger   *zap.Logger
	defaults Config
	state    State

	// Injected after construction. nil = no-op.
	Recorder Recorder
	OnChange func(State)
}

// NewEngine creates an Engine that rolls with rules and src.
//
// Precondition: rules, src and logger must be non-nil.
// Postcondition: Returns an Engine holding DefaultConfig with critChance
// replaced by defaultCrit and an empty result.
func NewEngine(rules Ruleset, src dice.Source, logger *zap.Logger, defaultCrit int) *Engine {
	defaults := DefaultConfig()
	defaults.CritChance = clampPercent(float64(defaultCrit))
	return &Engine{
		rules:    rules,
		src:      src,
		logger:   logger,
		defaults: defaults,
		state: State{
			AttackName: DefaultAttackName,
			Config:     defaults,
		},
	}
}

// Ruleset returns the name of the ruleset rolls are computed with.
func (e *Engine) Ruleset() string {
	return e.rules.Name()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Restore replaces the whole state, clamping the configuration into range.
//
// Postcondition: Snapshot() equals s for any s with an in-range configuration.
func (e *Engine) Restore(s State) {
	s = s.Clone()
	s.Config = s.Config.Sanitized()
	if s.AttackName == "" {
		s.AttackName = DefaultAttackName
	}
	if s.CustomHit < 0 {
		s.CustomHit = 0
	}
	e.update(func(st *State) { *st = s })
}

// UpdateNumber sets one numeric field. Changing a rune field resets the
// attack name to DefaultAttackName.
//
// Postcondition: Returns ErrUnknownField and leaves state unchanged for unknown fields.
func (e *Engine) UpdateNumber(f Field, value float64) error {
	var err error
	e.update(func(st *State) {
		var cfg Config
		cfg, err = st.Config.With(f, value)
		if err != nil {
			return
		}
		st.Config = cfg
		if f.isRuneField() {
			st.AttackName = DefaultAttackName
		}
	})
	return err
}

// SetModifier sets one modifier flag.
//
// Postcondition: Returns ErrUnknownModifier and leaves state unchanged for unknown modifiers.
func (e *Engine) SetModifier(m Modifier, enabled bool) error {
	var err error
	e.update(func(st *State) {
		var mods Modifiers
		mods, err = st.Config.Modifiers.With(m, enabled)
		if err == nil {
			st.Config.Modifiers = mods
		}
	})
	return err
}

// ToggleModifier flips one modifier flag and returns its new value.
func (e *Engine) ToggleModifier(m Modifier) (bool, error) {
	var (
		now bool
		err error
	)
	e.update(func(st *State) {
		var cur bool
		cur, err = st.Config.Modifiers.Get(m)
		if err != nil {
			return
		}
		now = !cur
		st.Config.Modifiers, err = st.Config.Modifiers.With(m, now)
	})
	return now, err
}

// Roll computes a new result from the current configuration and replaces
// the stored result with it.
//
// Postcondition: On success the returned Result equals Snapshot().Result and
// the Recorder has been notified. On error the state is unchanged.
func (e *Engine) Roll() (Result, error) {
	e.mu.Lock()
	name := e.state.AttackName
	cfg := e.state.Config
	res, err := e.rules.Roll(cfg, e.src)
	if err == nil {
		err = res.Validate()
	}
	if err != nil {
		e.mu.Unlock()
		e.logger.Info("roll skipped",
			zap.String("ruleset", e.rules.Name()),
			zap.Error(err),
		)
		return Result{}, err
	}
	if res.Ruleset == "" {
		res.Ruleset = e.rules.Name()
	}
	e.state.Result = res
	snap := e.state.Clone()
	e.mu.Unlock()

	e.logger.Debug("damage rolled",
		zap.String("attack", name),
		zap.String("ruleset", res.Ruleset),
		zap.Bool("crit", res.Critical),
		zap.Float64("dice_sides", res.DiceSides),
		zap.Float64("min_damage", res.MinimumDamage),
		zap.Float64s("rolls", res.Rolls),
		zap.Int("damage", res.TotalDamage),
	)

	if e.Recorder != nil {
		e.Recorder.Record(name, cfg, res.Clone())
	}
	e.notify(snap)
	return res.Clone(), nil
}

// SetCustomHit sets the manual damage override used by Hit. Values clamp to
// [0, MaxTotalDamage].
func (e *Engine) SetCustomHit(n int) {
	e.update(func(st *State) { st.CustomHit = min(max(n, 0), MaxTotalDamage) })
}

// ClearCustomHit removes the manual damage override.
func (e *Engine) ClearCustomHit() {
	e.SetCustomHit(0)
}

// Hit returns the damage applied by the tracker: the custom hit when set,
// else the total damage of the latest result.
//
// Postcondition: Returns >= 0.
func (e *Engine) Hit() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state.CustomHit != 0 {
		return e.state.CustomHit
	}
	return e.state.Result.TotalDamage
}

// Reset restores the default numbers and modifiers. The result is kept.
func (e *Engine) Reset() {
	e.update(func(st *State) {
		st.Config = e.defaults
		st.AttackName = DefaultAttackName
	})
}

// ClearResult restores the empty result shown before the first roll.
func (e *Engine) ClearResult() {
	e.update(func(st *State) { st.Result = Result{} })
}

// LoadPreset replaces the numbers with cfg and labels them with name.
// Modifiers currently set are kept.
func (e *Engine) LoadPreset(name string, cfg Config) {
	if name == "" {
		name = DefaultAttackName
	}
	cfg = cfg.Sanitized()
	e.update(func(st *State) {
		cfg.Modifiers = st.Config.Modifiers
		st.Config = cfg
		st.AttackName = name
	})
	e.logger.Info("attack preset loaded", zap.String("attack", name))
}

func (e *Engine) update(fn func(*State)) {
	e.mu.Lock()
	fn(&e.state)
	snap := e.state.Clone()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) notify(s State) {
	if e.OnChange != nil {
		e.OnChange(s)
	}
}
