// Package command provides the command registry, parser, and built-in command definitions.
package command

// Categories for organizing commands.
const (
	CategoryDamage = "damage"
	CategoryHealth = "health"
	CategoryTokens = "tokens"
	CategoryNotes  = "notes"
	CategorySheets = "sheets"
	CategoryRandom = "random"
	CategorySystem = "system"
)

// CategoryOrder lists the categories in help display order.
var CategoryOrder = []string{
	CategoryDamage, CategoryHealth, CategoryTokens, CategoryNotes,
	CategorySheets, CategoryRandom, CategorySystem,
}

// Handler identifiers mapping commands to dashboard handlers.
const (
	HandlerRoll    = "roll"
	HandlerSet     = "set"
	HandlerMod     = "mod"
	HandlerReset   = "reset"
	HandlerClear   = "clear"
	HandlerHit     = "hit"
	HandlerPreset  = "preset"
	HandlerRune    = "rune"
	HandlerHistory = "history"
	HandlerPlayer  = "player"
	HandlerSummon  = "summon"
	HandlerRemove  = "remove"
	HandlerDamage  = "damage"
	HandlerHeal    = "heal"
	HandlerBarrier = "barrier"
	HandlerShield  = "shield"
	HandlerDrain   = "drain"
	HandlerEdit    = "edit"
	HandlerToken   = "token"
	HandlerNote    = "note"
	HandlerRules   = "rules"
	HandlerSheet   = "sheet"
	HandlerRange   = "range"
	HandlerChance  = "chance"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a dashboard command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler maps to the dashboard handler.
	Handler string
}

// BuiltinCommands returns all built-in dashboard commands.
func BuiltinCommands() []Command {
	return []Command{
		// Damage calculator
		{Name: "roll", Aliases: []string{"r"}, Help: "Roll damage with the current attack", Category: CategoryDamage, Handler: HandlerRoll},
		{Name: "set", Usage: "<field> <value>", Help: "Set critChance, power, runeFlat, runeScaling, runeAccuracy or maxValue", Category: CategoryDamage, Handler: HandlerSet},
		{Name: "mod", Aliases: []string{"modifier"}, Usage: "<modifier> [on|off]", Help: "Toggle or set confused, encouraged, dodge or perfect", Category: CategoryDamage, Handler: HandlerMod},
		{Name: "reset", Help: "Restore the default attack numbers and modifiers", Category: CategoryDamage, Handler: HandlerReset},
		{Name: "clear", Help: "Clear the last roll result", Category: CategoryDamage, Handler: HandlerClear},
		{Name: "hit", Usage: "<n>|clear", Help: "Set or clear the manual damage override", Category: CategoryDamage, Handler: HandlerHit},
		{Name: "preset", Usage: "[name]", Help: "List attack presets or load one", Category: CategoryDamage, Handler: HandlerPreset},
		{Name: "rune", Usage: "<name>", Help: "Load a primary rune of the active sheet", Category: CategoryDamage, Handler: HandlerRune},
		{Name: "history", Aliases: []string{"hist"}, Usage: "[reset|load <n>]", Help: "Show, reset or reload past attacks", Category: CategoryDamage, Handler: HandlerHistory},

		// Health tracker
		{Name: "player", Usage: "<name> <shield> <durability> <maxhp>", Help: "Add or replace a player", Category: CategoryHealth, Handler: HandlerPlayer},
		{Name: "summon", Usage: "<name> <maxhp> <drain>", Help: "Add or replace a summon", Category: CategoryHealth, Handler: HandlerSummon},
		{Name: "remove", Aliases: []string{"rm"}, Usage: "<player|summon> <name>", Help: "Remove a character", Category: CategoryHealth, Handler: HandlerRemove},
		{Name: "damage", Aliases: []string{"dmg"}, Usage: "<player|summon> <name>", Help: "Apply the current hit as damage", Category: CategoryHealth, Handler: HandlerDamage},
		{Name: "heal", Usage: "<player|summon> <name>", Help: "Apply the current hit as healing", Category: CategoryHealth, Handler: HandlerHeal},
		{Name: "barrier", Usage: "<name> <add|remove>", Help: "Grant or strip barrier by the current hit", Category: CategoryHealth, Handler: HandlerBarrier},
		{Name: "shield", Usage: "<name> <reset|damage>", Help: "Refill a shield or damage it by the current hit", Category: CategoryHealth, Handler: HandlerShield},
		{Name: "drain", Usage: "<name>", Help: "Apply a summon's health drain", Category: CategoryHealth, Handler: HandlerDrain},
		{Name: "edit", Usage: "<player|summon> <name> <field> <value>", Help: "Edit a character field directly", Category: CategoryHealth, Handler: HandlerEdit},

		// Tokens
		{Name: "token", Aliases: []string{"tok"}, Usage: "[add|set|inc|dec|remove] <name> [value]", Help: "Manage token counters", Category: CategoryTokens, Handler: HandlerToken},

		// Notes and rules
		{Name: "note", Usage: "<text>|clear", Help: "Append a line to the notes, or clear them", Category: CategoryNotes, Handler: HandlerNote},
		{Name: "rules", Usage: "<file>|clear", Help: "Import rules from a text or markdown file", Category: CategoryNotes, Handler: HandlerRules},

		// Character sheets
		{Name: "sheet", Usage: "[import|remove|use|apply|show|list] [file|sheet]", Help: "Manage character sheets", Category: CategorySheets, Handler: HandlerSheet},

		// Random helpers
		{Name: "range", Usage: "<min> <max>", Help: "Roll an integer in an inclusive range", Category: CategoryRandom, Handler: HandlerRange},
		{Name: "chance", Aliases: []string{"pct"}, Usage: "<percent>", Help: "Roll a percentage check", Category: CategoryRandom, Handler: HandlerChance},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Usage: "[command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the dashboard", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// Synopsis returns the command name followed by its usage.
func (c Command) Synopsis() string {
	if c.Usage == "" {
		return c.Name
	}
	return c.Name + " " + c.Usage
}
