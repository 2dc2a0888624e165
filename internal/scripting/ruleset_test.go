package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/scripting"
	"github.com/cory-johannsen/rotz-assistant/internal/testutil"
)

func newRuleset(t testing.TB, src string) *scripting.Ruleset {
	t.Helper()
	r, err := scripting.NewRuleset("test.lua", src, 0, zap.NewNop())
	require.NoError(t, err)
	return r
}

func loadAccuracy(t testing.TB) *scripting.Ruleset {
	t.Helper()
	r, err := scripting.LoadRuleset(filepath.Join("testdata", "accuracy.lua"), 0, zap.NewNop())
	require.NoError(t, err)
	return r
}

func attack(acc float64) damage.Config {
	return damage.Config{CritChance: 5, Power: 50, RuneFlat: 10, RuneScaling: 20, RuneAccuracy: acc}
}

func TestLoadRuleset(t *testing.T) {
	r := loadAccuracy(t)
	assert.Equal(t, damage.RulesetScript, r.Name())
	assert.Equal(t, filepath.Join("testdata", "accuracy.lua"), r.Script())

	_, err := scripting.LoadRuleset(filepath.Join(t.TempDir(), "missing.lua"), 0, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRuleset_Errors(t *testing.T) {
	_, err := scripting.NewRuleset("syntax.lua", `function roll_damage(`, 0, zap.NewNop())
	assert.Error(t, err)

	_, err = scripting.NewRuleset("nohook.lua", `local x = 1`, 0, zap.NewNop())
	assert.ErrorIs(t, err, scripting.ErrNoRollHook)

	_, err = scripting.NewRuleset("boom.lua", `error("at load")`, 0, zap.NewNop())
	assert.ErrorIs(t, err, scripting.ErrScriptFailed)

	_, err = scripting.NewRuleset("spin.lua", `while true do end`, 50, zap.NewNop())
	assert.ErrorIs(t, err, scripting.ErrScriptFailed)
}

func TestRoll_ReadsConfigAndResult(t *testing.T) {
	r := newRuleset(t, `
		function roll_damage(cfg)
			assert(cfg.max_hit == 20, "max_hit")
			assert(cfg.modifiers.encouraged, "encouraged")
			return {
				critical = true,
				dice_sides = cfg.max_hit / cfg.rune_accuracy,
				minimum_damage = 1,
				rolls = {engine.random() * 10, 4},
				total = 7,
			}
		end
	`)
	cfg := attack(2)
	cfg.Modifiers.Encouraged = true
	res, err := r.Roll(cfg, &testutil.SequenceSource{Floats: []float64{0.5}})
	require.NoError(t, err)
	assert.Equal(t, damage.Result{
		Critical:      true,
		DiceSides:     10,
		MinimumDamage: 1,
		Rolls:         []float64{5, 4},
		TotalDamage:   7,
		Ruleset:       damage.RulesetScript,
	}, res)
}

func TestRoll_Refused(t *testing.T) {
	r := newRuleset(t, `function roll_damage(cfg) return nil, "no accuracy" end`)
	_, err := r.Roll(attack(0), dice.NewSeededSource(1))
	require.ErrorIs(t, err, scripting.ErrRollRefused)
	assert.Contains(t, err.Error(), "no accuracy")
}

func TestRoll_InvalidResults(t *testing.T) {
	tests := map[string]string{
		"not a table":     `return 12`,
		"no rolls":        `return {total = 3}`,
		"empty rolls":     `return {rolls = {}, total = 3}`,
		"string roll":     `return {rolls = {"six"}, total = 3}`,
		"missing total":   `return {rolls = {1}}`,
		"fractional":      `return {rolls = {1}, total = 2.5}`,
		"negative":        `return {rolls = {1}, total = -1}`,
		"huge total":      `return {rolls = {1}, total = 1e20}`,
		"infinite roll":   `return {rolls = {math.huge}, total = 1}`,
		"too many":        `local r = {} for i = 1, 1001 do r[i] = 1 end return {rolls = r, total = 1}`,
		"bad dice sides":  `return {rolls = {1}, total = 1, dice_sides = "d6"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			r := newRuleset(t, "function roll_damage(cfg) "+body+" end")
			_, err := r.Roll(attack(1), dice.NewSeededSource(1))
			assert.ErrorIs(t, err, damage.ErrInvalidResult)
		})
	}
}

func TestRoll_RuntimeErrorAndLimit(t *testing.T) {
	r := newRuleset(t, `function roll_damage(cfg) error("boom") end`)
	_, err := r.Roll(attack(1), dice.NewSeededSource(1))
	assert.ErrorIs(t, err, scripting.ErrScriptFailed)

	spin, err := scripting.NewRuleset("spin.lua", `function roll_damage(cfg) while true do end end`, 500, zap.NewNop())
	require.NoError(t, err)
	_, err = spin.Roll(attack(1), dice.NewSeededSource(1))
	assert.ErrorIs(t, err, scripting.ErrScriptFailed)
}

func TestRoll_NoStateBetweenRolls(t *testing.T) {
	r := newRuleset(t, `
		counter = 0
		function roll_damage(cfg)
			counter = counter + 1
			return {rolls = {counter}, total = counter}
		end
	`)
	for i := 0; i < 3; i++ {
		res, err := r.Roll(attack(1), dice.NewSeededSource(1))
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalDamage)
	}
}

func TestRoll_ThroughEngine(t *testing.T) {
	eng := damage.NewEngine(loadAccuracy(t), dice.NewSeededSource(7), zap.NewNop(), damage.DefaultCritChance)
	_, err := eng.Roll()
	assert.ErrorIs(t, err, scripting.ErrRollRefused, "fresh engine has no accuracy")
	assert.True(t, eng.Snapshot().Result.IsEmpty())

	require.NoError(t, eng.UpdateNumber(damage.FieldRuneAccuracy, 2))
	require.NoError(t, eng.UpdateNumber(damage.FieldRuneFlat, 10))
	res, err := eng.Roll()
	require.NoError(t, err)
	assert.Equal(t, damage.RulesetScript, res.Ruleset)
	assert.Equal(t, res, eng.Snapshot().Result)
}

// The bundled accuracy script must agree with the built-in ruleset roll for
// roll when both draw from identically seeded sources.
func TestProperty_AccuracyScriptMatchesBuiltin(t *testing.T) {
	script := loadAccuracy(t)
	rapid.Check(t, func(rt *rapid.T) {
		cfg := damage.Config{
			CritChance:   rapid.IntRange(0, 100).Draw(rt, "crit"),
			Power:        rapid.Float64Range(0, 300).Draw(rt, "power"),
			RuneFlat:     rapid.Float64Range(0, 100).Draw(rt, "flat"),
			RuneScaling:  rapid.Float64Range(0, 200).Draw(rt, "scaling"),
			RuneAccuracy: rapid.Float64Range(0.5, 20).Draw(rt, "accuracy"),
			Modifiers: damage.Modifiers{
				Confused:   rapid.Bool().Draw(rt, "confused"),
				Encouraged: rapid.Bool().Draw(rt, "encouraged"),
				Perfect:    rapid.Bool().Draw(rt, "perfect"),
			},
		}
		seed := rapid.Int64().Draw(rt, "seed")

		want, err := damage.AccuracyRuleset{}.Roll(cfg, dice.NewSeededSource(seed))
		if err != nil {
			rt.Fatal(err)
		}
		want.Ruleset = damage.RulesetScript
		got, err := script.Roll(cfg, dice.NewSeededSource(seed))
		if err != nil {
			rt.Fatal(err)
		}
		if !assert.Equal(rt, want, got) {
			rt.FailNow()
		}
	})
}

func TestLoadRuleset_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
		function roll_damage(cfg)
			return {rolls = {cfg.rune_flat}, total = cfg.rune_flat}
		end
	`), 0o644))
	r, err := scripting.LoadRuleset(path, 0, zap.NewNop())
	require.NoError(t, err)
	res, err := r.Roll(attack(1), dice.NewSeededSource(1))
	require.NoError(t, err)
	assert.Equal(t, 10, res.TotalDamage)
}
