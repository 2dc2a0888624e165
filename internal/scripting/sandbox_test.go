package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/scripting"
)

func newSandbox(t testing.TB, limit int) *scripting.Sandbox {
	t.Helper()
	sb := scripting.NewSandbox(limit)
	t.Cleanup(sb.Close)
	return sb
}

func TestNewSandbox_UnsafeLibsNil(t *testing.T) {
	sb := newSandbox(t, 0)
	for _, name := range []string{"os", "io", "debug"} {
		assert.Equal(t, lua.LNil, sb.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandbox_BlockedGlobalsNil(t *testing.T) {
	sb := newSandbox(t, 0)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, sb.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandbox_MathRandomRemoved(t *testing.T) {
	sb := newSandbox(t, 0)
	assert.NoError(t, sb.DoString(`assert(math.random == nil and math.randomseed == nil)`))
	assert.Error(t, sb.DoString(`local x = math.random(6)`))
}

func TestNewSandbox_SafeLibsAvailable(t *testing.T) {
	sb := newSandbox(t, 0)
	err := sb.DoString(`
		assert(math.floor(14.67) == 14, "math.floor failed")
		assert(math.max(1, 0.4) == 1, "math.max failed")
		assert(string.format("%d", 44) == "44", "string.format failed")
		local rolls = {9, 1, 4}
		table.sort(rolls)
		assert(rolls[1] == 1, "table.sort failed")
	`)
	assert.NoError(t, err)
}

func TestNewSandbox_InstructionLimitExceeded(t *testing.T) {
	sb := newSandbox(t, 10)
	assert.Error(t, sb.DoString(`while true do end`), "expected instruction limit error")
}

func TestNewSandbox_DefaultLimitRunsNormalScript(t *testing.T) {
	sb := newSandbox(t, 0)
	assert.NoError(t, sb.DoString(`local sum = 0 for i = 1, 1000 do sum = sum + i end`))
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		sb := scripting.NewSandbox(limit)
		defer sb.Close()
		if err := sb.DoString(`while true do end`); err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
