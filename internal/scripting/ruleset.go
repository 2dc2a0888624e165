package scripting

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// RollHook is the Lua global every ruleset script must define.
const RollHook = "roll_damage"

var (
	// ErrNoRollHook is returned when a script does not define RollHook.
	ErrNoRollHook = errors.New("script does not define " + RollHook)
	// ErrRollRefused is returned when the script declines to roll by
	// returning nil and a reason.
	ErrRollRefused = errors.New("script refused the roll")
	// ErrScriptFailed is returned for Lua runtime errors, including an
	// exhausted instruction limit.
	ErrScriptFailed = errors.New("ruleset script failed")
)

// Ruleset is a damage.Ruleset backed by a Lua script.
//
// The script is compiled once. Every roll runs in a fresh sandbox, so a
// script cannot keep state between rolls. Ruleset is safe for concurrent use.
type Ruleset struct {
	name   string
	proto  *lua.FunctionProto
	limit  int
	logger *zap.Logger
}

// LoadRuleset compiles the ruleset script at path.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a Ruleset whose script defines RollHook, or an error.
func LoadRuleset(path string, instLimit int, logger *zap.Logger) (*Ruleset, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading ruleset %q: %w", path, err)
	}
	return NewRuleset(path, string(src), instLimit, logger)
}

// NewRuleset compiles src, naming it name in error messages, and checks that
// running it defines RollHook.
//
// Precondition: logger must be non-nil; instLimit >= 0, 0 uses DefaultInstructionLimit.
func NewRuleset(name, src string, instLimit int, logger *zap.Logger) (*Ruleset, error) {
	chunk, err := parse.Parse(strings.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("scripting: parsing %q: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	r := &Ruleset{name: name, proto: proto, limit: instLimit, logger: logger}

	L, cancel, err := r.load(dice.NewSeededSource(0))
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer L.Close()
	if _, ok := L.GetGlobal(RollHook).(*lua.LFunction); !ok {
		return nil, fmt.Errorf("scripting: %q: %w", name, ErrNoRollHook)
	}
	logger.Info("ruleset script loaded", zap.String("script", name))
	return r, nil
}

// Name implements damage.Ruleset.
func (r *Ruleset) Name() string { return damage.RulesetScript }

// Script returns the name the script was loaded under.
func (r *Ruleset) Script() string { return r.name }

// Roll implements damage.Ruleset by calling roll_damage(cfg) with the
// attack configuration as a table:
//
//	{crit_chance, power, rune_flat, rune_scaling, rune_accuracy, max_value,
//	 max_hit, modifiers = {confused, encouraged, dodge, perfect}}
//
// The script returns {critical, dice_sides, minimum_damage, rolls, total},
// or nil and a reason to refuse the roll.
func (r *Ruleset) Roll(cfg damage.Config, src dice.Source) (damage.Result, error) {
	L, err := r.load(src)
	if err != nil {
		return damage.Result{}, err
	}
	defer L.Close()

	err = L.CallByParam(lua.P{
		Fn:      L.GetGlobal(RollHook),
		NRet:    2,
		Protect: true,
	}, configTable(L, cfg.Sanitized()))
	if err != nil {
		r.logger.Warn("scripting: Lua runtime error",
			zap.String("script", r.name),
			zap.Error(err),
		)
		return damage.Result{}, fmt.Errorf("%w: %v", ErrScriptFailed, err)
	}
	ret, reason := L.Get(-2), L.Get(-1)
	L.Pop(2)

	if ret == lua.LNil {
		msg := "no reason given"
		if s, ok := reason.(lua.LString); ok {
			msg = string(s)
		}
		return damage.Result{}, fmt.Errorf("%w: %s", ErrRollRefused, msg)
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return damage.Result{}, fmt.Errorf("%w: %s must return a table, got %s", damage.ErrInvalidResult, RollHook, ret.Type())
	}
	res, err := resultFromTable(tbl)
	if err != nil {
		return damage.Result{}, err
	}
	res.Ruleset = damage.RulesetScript
	if err := res.Validate(); err != nil {
		return damage.Result{}, err
	}
	return res, nil
}

// load creates a sandbox and runs the compiled chunk in it.
func (r *Ruleset) load(src dice.Source) (*Sandbox, error) {
	L := NewSandbox(r.limit)
	RegisterModules(L.LState, src, r.logger)
	L.Push(L.NewFunctionFromProto(r.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: running %q: %v", ErrScriptFailed, r.name, err)
	}
	return L, nil
}

func configTable(L *lua.LState, cfg damage.Config) *lua.LTable {
	mods := L.NewTable()
	mods.RawSetString("confused", lua.LBool(cfg.Modifiers.Confused))
	mods.RawSetString("encouraged", lua.LBool(cfg.Modifiers.Encouraged))
	mods.RawSetString("dodge", lua.LBool(cfg.Modifiers.Dodge))
	mods.RawSetString("perfect", lua.LBool(cfg.Modifiers.Perfect))

	t := L.NewTable()
	t.RawSetString("crit_chance", lua.LNumber(cfg.CritChance))
	t.RawSetString("power", lua.LNumber(cfg.Power))
	t.RawSetString("rune_flat", lua.LNumber(cfg.RuneFlat))
	t.RawSetString("rune_scaling", lua.LNumber(cfg.RuneScaling))
	t.RawSetString("rune_accuracy", lua.LNumber(cfg.RuneAccuracy))
	t.RawSetString("max_value", lua.LNumber(cfg.MaxValue))
	t.RawSetString("max_hit", lua.LNumber(cfg.MaxHit()))
	t.RawSetString("modifiers", mods)
	return t
}

func resultFromTable(t *lua.LTable) (damage.Result, error) {
	var errs []string
	number := func(key string, required bool) float64 {
		v := t.RawGetString(key)
		if v == lua.LNil && !required {
			return 0
		}
		n, ok := v.(lua.LNumber)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s must be a number, got %s", key, v.Type()))
			return 0
		}
		return float64(n)
	}

	res := damage.Result{
		Critical:      lua.LVAsBool(t.RawGetString("critical")),
		DiceSides:     number("dice_sides", false),
		MinimumDamage: number("minimum_damage", false),
	}
	total := number("total", true)
	if total != math.Trunc(total) {
		errs = append(errs, fmt.Sprintf("total must be an integer, got %g", total))
	}
	if total < 0 || total > damage.MaxTotalDamage {
		errs = append(errs, fmt.Sprintf("total must be in [0, %d], got %g", damage.MaxTotalDamage, total))
	}
	res.TotalDamage = damage.TotalDamageOf(total)

	switch rolls := t.RawGetString("rolls").(type) {
	case *lua.LTable:
		n := rolls.Len()
		if n > damage.MaxDice {
			errs = append(errs, fmt.Sprintf("rolls holds %d dice, limit is %d", n, damage.MaxDice))
			break
		}
		for i := 1; i <= n; i++ {
			v, ok := rolls.RawGetInt(i).(lua.LNumber)
			if !ok {
				errs = append(errs, fmt.Sprintf("rolls[%d] must be a number", i))
				continue
			}
			res.Rolls = append(res.Rolls, float64(v))
		}
	default:
		errs = append(errs, fmt.Sprintf("rolls must be a table, got %s", rolls.Type()))
	}

	if len(errs) > 0 {
		return damage.Result{}, fmt.Errorf("%w: %s", damage.ErrInvalidResult, strings.Join(errs, "; "))
	}
	return res, nil
}
