// Package scripting runs user-supplied damage rulesets in GopherLua. Scripts
// see the base, table, string and math libraries plus the engine.* helpers;
// every random draw goes through the engine's dice source.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// roll when no override is configured.
const DefaultInstructionLimit = 100_000

// blockedGlobals reach the filesystem, the module loader or the collector.
var blockedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// blockedMath would give scripts a second, unlogged random stream.
var blockedMath = []string{"random", "randomseed"}

// budget is a context that cancels itself once Done has been polled limit
// times. GopherLua polls Done once per opcode, so the budget is an exact
// instruction count.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (b *budget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// Sandbox is a Lua state for a single roll.
type Sandbox struct {
	*lua.LState
	cancel context.CancelFunc
}

// NewSandbox creates a state with only the safe libraries open, the blocked
// globals removed and at most instLimit opcodes to run.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller must Close the returned Sandbox.
func NewSandbox(instLimit int) *Sandbox {
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if m, ok := L.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		for _, name := range blockedMath {
			m.RawSetString(name, lua.LNil)
		}
	}

	base, cancel := context.WithCancel(context.Background())
	b := &budget{Context: base, cancel: cancel}
	b.remaining.Store(int64(instLimit))
	L.SetContext(b)
	return &Sandbox{LState: L, cancel: cancel}
}

// Close releases the budget and the Lua state.
func (s *Sandbox) Close() {
	s.cancel()
	s.LState.Close()
}
