package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// RegisterModules registers the engine global into L:
//
//	engine.random()      uniform float in [0, 1)
//	engine.intn(n)       uniform int in [0, n), n >= 1
//	engine.round(x)      round half away from zero
//	engine.log.debug(msg), .info, .warn, .error
//
// Precondition: L must be a Sandbox state; src and logger must be non-nil.
// Postcondition: engine global is defined in L.
func RegisterModules(L *lua.LState, src dice.Source, logger *zap.Logger) {
	engine := L.NewTable()
	L.SetFuncs(engine, map[string]lua.LGFunction{
		"random": func(L *lua.LState) int {
			L.Push(lua.LNumber(src.Float64()))
			return 1
		},
		"intn": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 1 {
				L.ArgError(1, "n must be >= 1")
				return 0
			}
			L.Push(lua.LNumber(src.Intn(n)))
			return 1
		},
		"round": func(L *lua.LState) int {
			L.Push(lua.LNumber(math.Round(float64(L.CheckNumber(1)))))
			return 1
		},
	})
	engine.RawSetString("log", logModule(L, logger))
	L.SetGlobal("engine", engine)
}

func logModule(L *lua.LState, logger *zap.Logger) *lua.LTable {
	level := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}
	}
	t := L.NewTable()
	L.SetFuncs(t, map[string]lua.LGFunction{
		"debug": level(logger.Debug),
		"info":  level(logger.Info),
		"warn":  level(logger.Warn),
		"error": level(logger.Error),
	})
	return t
}
