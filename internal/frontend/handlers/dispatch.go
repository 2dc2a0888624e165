// Package handlers turns dashboard command lines into calls on the assistant
// engines and renders their state as styled text.
package handlers

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/assistant"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/game/command"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
)

// RevealKind selects the animation played before a result is shown.
type RevealKind int

const (
	// RevealRoll animates the dice bars of a damage roll.
	RevealRoll RevealKind = iota + 1
	// RevealRandom shows a spinner for the random reveal delay.
	RevealRandom
)

// Reveal is output held back until an animation finishes.
type Reveal struct {
	Kind RevealKind
	// Result is the roll being animated. Only set for RevealRoll.
	Result damage.Result
	// Text is shown once the animation ends.
	Text string
}

// Output is the outcome of one command line.
type Output struct {
	// Text is shown immediately. It may be empty.
	Text string
	// Err is true when Text describes a failure.
	Err bool
	// Quit is true when the dashboard should exit.
	Quit bool
	// Reveal is non-nil when part of the output is animated.
	Reveal *Reveal
}

// usageError marks errors caused by malformed arguments. The dispatcher adds
// the command synopsis to them.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// handlerContext carries all inputs a handler needs.
type handlerContext struct {
	app      *assistant.App
	registry *command.Registry
	cmd      *command.Command
	parsed   command.ParseResult
}

// handlerFunc is the signature for all dispatch functions.
type handlerFunc func(hctx *handlerContext) (Output, error)

// Handlers returns the map from Handler constant to handler function.
// Exported so TestAllCommandHandlersAreWired can verify completeness.
func Handlers() map[string]handlerFunc {
	return handlerMap
}

// handlerMap is the single source of truth for dashboard command dispatch.
// To add a new command: add a Handler constant to commands.go AND add an entry here.
var handlerMap = map[string]handlerFunc{
	command.HandlerRoll:    handleRoll,
	command.HandlerSet:     handleSet,
	command.HandlerMod:     handleMod,
	command.HandlerReset:   handleReset,
	command.HandlerClear:   handleClear,
	command.HandlerHit:     handleHit,
	command.HandlerPreset:  handlePreset,
	command.HandlerRune:    handleRune,
	command.HandlerHistory: handleHistory,
	command.HandlerPlayer:  handlePlayer,
	command.HandlerSummon:  handleSummon,
	command.HandlerRemove:  handleRemove,
	command.HandlerDamage:  handleDamage,
	command.HandlerHeal:    handleHeal,
	command.HandlerBarrier: handleBarrier,
	command.HandlerShield:  handleShield,
	command.HandlerDrain:   handleDrain,
	command.HandlerEdit:    handleEdit,
	command.HandlerToken:   handleToken,
	command.HandlerNote:    handleNote,
	command.HandlerRules:   handleRules,
	command.HandlerSheet:   handleSheet,
	command.HandlerRange:   handleRange,
	command.HandlerChance:  handleChance,
	command.HandlerHelp:    handleHelp,
	command.HandlerQuit:    handleQuit,
}

// Dispatcher resolves command lines against a registry and runs them on an App.
type Dispatcher struct {
	app      *assistant.App
	registry *command.Registry
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: app and reg must be non-nil.
func NewDispatcher(app *assistant.App, reg *command.Registry) *Dispatcher {
	return &Dispatcher{app: app, registry: reg}
}

// Registry returns the registry commands are resolved against.
func (d *Dispatcher) Registry() *command.Registry {
	return d.registry
}

// Execute parses and runs one command line.
//
// Postcondition: Returns an Output; failures are reported with Err set and
// leave every engine unchanged.
func (d *Dispatcher) Execute(line string) Output {
	parsed, err := command.Parse(line)
	if parsed.Command == "" {
		return Output{}
	}
	cmd, ok := d.registry.Resolve(parsed.Command)
	if !ok {
		msg := fmt.Sprintf("Unknown command %q.", parsed.Command)
		if near := d.registry.Suggest(parsed.Command); len(near) > 0 {
			msg += " Did you mean " + strings.Join(near, ", ") + "?"
		}
		return errorOutput(msg + " Type 'help' for a list of commands.")
	}
	if err != nil {
		return errorOutput(fmt.Sprintf("%s: %v", cmd.Name, err))
	}
	fn, ok := handlerMap[cmd.Handler]
	if !ok {
		d.app.Logger.Error("command has no handler", zap.String("command", cmd.Name), zap.String("handler", cmd.Handler))
		return errorOutput(fmt.Sprintf("%s is not available.", cmd.Name))
	}

	out, err := fn(&handlerContext{app: d.app, registry: d.registry, cmd: cmd, parsed: parsed})
	if err != nil {
		d.app.Logger.Debug("command failed", zap.String("command", cmd.Name), zap.Error(err))
		var usage usageError
		if errors.As(err, &usage) {
			return errorOutput(fmt.Sprintf("%v\nUsage: %s", err, cmd.Synopsis()))
		}
		return errorOutput(fmt.Sprintf("%s: %v", cmd.Name, err))
	}
	return out
}

func errorOutput(msg string) Output {
	return Output{Text: ansi.Colorize(ansi.Red, msg), Err: true}
}

func textOutput(format string, args ...any) Output {
	return Output{Text: fmt.Sprintf(format, args...)}
}
