package scripting_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/scripting"
	"github.com/cory-johannsen/rotz-assistant/internal/testutil"
)

// runModule evaluates expr in a sandbox with the engine modules registered
// and returns its value.
func runModule(t testing.TB, src dice.Source, logger *zap.Logger, expr string) (lua.LValue, error) {
	t.Helper()
	L := newSandbox(t, 0)
	scripting.RegisterModules(L.LState, src, logger)
	if err := L.DoString("result = " + expr); err != nil {
		return lua.LNil, err
	}
	return L.GetGlobal("result"), nil
}

func TestEngineRandom_UsesSource(t *testing.T) {
	src := &testutil.SequenceSource{Floats: []float64{0.25}}
	ret, err := runModule(t, src, zap.NewNop(), "engine.random()")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(0.25), ret)
}

func TestEngineIntn_UsesSource(t *testing.T) {
	src := &testutil.SequenceSource{Ints: []int{42}}
	ret, err := runModule(t, src, zap.NewNop(), "engine.intn(100)")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), ret)
}

func TestEngineIntn_RejectsNonPositive(t *testing.T) {
	_, err := runModule(t, dice.NewSeededSource(1), zap.NewNop(), "engine.intn(0)")
	assert.Error(t, err)
}

func TestEngineRound(t *testing.T) {
	for expr, want := range map[string]float64{
		"engine.round(2.5)":  3,
		"engine.round(2.49)": 2,
		"engine.round(-2.5)": -3,
	} {
		ret, err := runModule(t, dice.NewSeededSource(1), zap.NewNop(), expr)
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(want), ret, expr)
	}
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	L := newSandbox(t, 0)
	scripting.RegisterModules(L.LState, dice.NewSeededSource(1), zap.New(core))
	require.NoError(t, L.DoString(`
		engine.log.debug("d")
		engine.log.info("i")
		engine.log.warn("w")
		engine.log.error("e")
	`))

	levels := map[string]bool{}
	for _, e := range logs.All() {
		levels[e.Level.String()] = true
	}
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.True(t, levels[lvl], "expected %s log", lvl)
	}
}

func TestProperty_EngineIntnInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		seed := rapid.Int64().Draw(rt, "seed")
		L := scripting.NewSandbox(0)
		defer L.Close()
		scripting.RegisterModules(L.LState, dice.NewSeededSource(seed), zap.NewNop())
		if err := L.DoString(fmt.Sprintf("result = engine.intn(%d)", n)); err != nil {
			rt.Fatal(err)
		}
		v := int(L.GetGlobal("result").(lua.LNumber))
		if v < 0 || v >= n {
			rt.Fatalf("intn(%d) returned %d", n, v)
		}
	})
}
