package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

// fieldAliases maps the short names accepted by set to attack fields.
var fieldAliases = map[string]damage.Field{
	"crit":     damage.FieldCritChance,
	"power":    damage.FieldPower,
	"flat":     damage.FieldRuneFlat,
	"scaling":  damage.FieldRuneScaling,
	"acc":      damage.FieldRuneAccuracy,
	"accuracy": damage.FieldRuneAccuracy,
	"max":      damage.FieldMaxValue,
}

func parseField(s string) (damage.Field, bool) {
	if f, ok := fieldAliases[strings.ToLower(s)]; ok {
		return f, true
	}
	for _, f := range damage.Fields {
		if strings.EqualFold(string(f), s) {
			return f, true
		}
	}
	return "", false
}

func parseModifier(s string) (damage.Modifier, bool) {
	for _, m := range damage.AllModifiers {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// intArg parses the i-th argument as an integer, reporting failures as usage errors.
func intArg(hctx *handlerContext, i int) (int, error) {
	v, err := hctx.parsed.Int(i)
	if err != nil {
		return 0, usagef("%v", err)
	}
	return v, nil
}

func floatArg(hctx *handlerContext, i int) (float64, error) {
	v, err := hctx.parsed.Float(i)
	if err != nil {
		return 0, usagef("%v", err)
	}
	return v, nil
}

// kindAndName parses the leading <player|summon> <name> arguments.
func kindAndName(hctx *handlerContext) (health.Kind, string, error) {
	if len(hctx.parsed.Args) < 2 {
		return "", "", usagef("a character kind and name are required")
	}
	kind, err := health.ParseKind(strings.ToLower(hctx.parsed.Arg(0)))
	if err != nil {
		return "", "", usagef("%v", err)
	}
	return kind, hctx.parsed.Arg(1), nil
}

func success(format string, args ...any) Output {
	return Output{Text: ansi.Colorf(ansi.Green, format, args...)}
}

// handleRoll rolls damage with the current attack.
//
// Postcondition: on success the returned Output carries a RevealRoll whose
// Result is the engine's new result.
func handleRoll(hctx *handlerContext) (Output, error) {
	res, err := hctx.app.Damage.Roll()
	if err != nil {
		return Output{}, err
	}
	return Output{Reveal: &Reveal{Kind: RevealRoll, Result: res, Text: RenderResult(res)}}, nil
}

// handleSet updates one numeric attack field.
func handleSet(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 2 {
		return Output{}, usagef("a field and a value are required")
	}
	f, ok := parseField(hctx.parsed.Arg(0))
	if !ok {
		return Output{}, usagef("unknown field %q", hctx.parsed.Arg(0))
	}
	v, err := floatArg(hctx, 1)
	if err != nil {
		return Output{}, err
	}
	if err := hctx.app.Damage.UpdateNumber(f, v); err != nil {
		return Output{}, err
	}
	got, _ := hctx.app.Damage.Snapshot().Config.Get(f)
	return success("%s set to %s.", f, Num(got)), nil
}

// handleMod sets a modifier, or toggles it when no switch is given.
func handleMod(hctx *handlerContext) (Output, error) {
	m, ok := parseModifier(hctx.parsed.Arg(0))
	if !ok {
		return Output{}, usagef("unknown modifier %q", hctx.parsed.Arg(0))
	}
	on, present, err := hctx.parsed.OnOff(1)
	if err != nil {
		return Output{}, usagef("%v", err)
	}
	if present {
		err = hctx.app.Damage.SetModifier(m, on)
	} else {
		on, err = hctx.app.Damage.ToggleModifier(m)
	}
	if err != nil {
		return Output{}, err
	}
	state := "off"
	if on {
		state = "on"
	}
	return success("%s %s.", m, state), nil
}

func handleReset(hctx *handlerContext) (Output, error) {
	hctx.app.Damage.Reset()
	return success("Attack numbers reset."), nil
}

func handleClear(hctx *handlerContext) (Output, error) {
	hctx.app.Damage.ClearResult()
	return success("Result cleared."), nil
}

// handleHit shows, sets or clears the manual damage override.
func handleHit(hctx *handlerContext) (Output, error) {
	arg := hctx.parsed.Arg(0)
	switch {
	case arg == "":
		return textOutput("Current hit: %d", hctx.app.Damage.Hit()), nil
	case strings.EqualFold(arg, "clear"):
		hctx.app.Damage.ClearCustomHit()
		return success("Custom hit cleared."), nil
	}
	n, err := intArg(hctx, 0)
	if err != nil {
		return Output{}, err
	}
	hctx.app.Damage.SetCustomHit(n)
	return success("Custom hit set to %d.", hctx.app.Damage.Hit()), nil
}

// handlePreset lists the preset library or loads a preset by name.
func handlePreset(hctx *handlerContext) (Output, error) {
	if hctx.parsed.RawArgs == "" {
		return Output{Text: RenderPresets(hctx.app.Presets.All())}, nil
	}
	p, err := hctx.app.LoadPreset(hctx.parsed.RawArgs)
	if err != nil {
		return Output{}, err
	}
	return success("Loaded preset %s.", p.Name), nil
}

// handleRune lists the runes of the active sheet or loads one.
func handleRune(hctx *handlerContext) (Output, error) {
	if hctx.parsed.RawArgs == "" {
		e, ok := hctx.app.Sheets.Active()
		if !ok {
			return Output{}, sheet.ErrSheetNotFound
		}
		return Output{Text: RenderSheet(e)}, nil
	}
	name, err := hctx.app.LoadRune(hctx.parsed.RawArgs)
	if err != nil {
		return Output{}, err
	}
	return success("Loaded rune %s.", name), nil
}

// handleHistory shows the attack history, resets it, or loads an entry back
// into the calculator. Entries are numbered from 1, newest first.
func handleHistory(hctx *handlerContext) (Output, error) {
	switch strings.ToLower(hctx.parsed.Arg(0)) {
	case "":
		return Output{Text: RenderHistory(hctx.app.History.List())}, nil
	case "reset":
		hctx.app.History.Reset()
		return success("History cleared."), nil
	case "load":
		n, err := intArg(hctx, 1)
		if err != nil {
			return Output{}, err
		}
		a, err := hctx.app.History.Load(n-1, hctx.app.Damage)
		if err != nil {
			return Output{}, err
		}
		return success("Loaded %s from history.", a.Name), nil
	}
	return Output{}, usagef("unknown history action %q", hctx.parsed.Arg(0))
}

// handlePlayer adds or replaces a player.
func handlePlayer(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 4 {
		return Output{}, usagef("a name, shield, durability and max health are required")
	}
	nums := make([]int, 3)
	for i := range nums {
		v, err := intArg(hctx, i+1)
		if err != nil {
			return Output{}, err
		}
		nums[i] = v
	}
	name := hctx.parsed.Arg(0)
	if err := hctx.app.Health.AddPlayer(name, nums[0], nums[1], nums[2]); err != nil {
		return Output{}, err
	}
	return success("Player %s added.", name), nil
}

// handleSummon adds or replaces a summon.
func handleSummon(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 3 {
		return Output{}, usagef("a name, max health and drain are required")
	}
	maxHP, err := intArg(hctx, 1)
	if err != nil {
		return Output{}, err
	}
	drain, err := intArg(hctx, 2)
	if err != nil {
		return Output{}, err
	}
	name := hctx.parsed.Arg(0)
	if err := hctx.app.Health.AddSummon(name, maxHP, drain); err != nil {
		return Output{}, err
	}
	return success("Summon %s added.", name), nil
}

func handleRemove(hctx *handlerContext) (Output, error) {
	kind, name, err := kindAndName(hctx)
	if err != nil {
		return Output{}, err
	}
	if err := hctx.app.Health.RemoveCharacter(name, kind); err != nil {
		return Output{}, err
	}
	return success("Removed %s.", name), nil
}

func handleDamage(hctx *handlerContext) (Output, error) {
	return updateHealth(hctx, health.DirectionRemove)
}

func handleHeal(hctx *handlerContext) (Output, error) {
	return updateHealth(hctx, health.DirectionAdd)
}

func updateHealth(hctx *handlerContext, dir health.Direction) (Output, error) {
	kind, name, err := kindAndName(hctx)
	if err != nil {
		return Output{}, err
	}
	hit := hctx.app.Damage.Hit()
	if err := hctx.app.Health.UpdateCurrentHealth(name, dir, kind); err != nil {
		return Output{}, err
	}
	verb := "healed"
	if dir == health.DirectionRemove {
		verb = "took"
	}
	return success("%s %s %d.", name, verb, hit), nil
}

// handleBarrier raises or damages a player's barrier by the current hit.
func handleBarrier(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 2 {
		return Output{}, usagef("a name and add or remove are required")
	}
	dir, err := health.ParseDirection(strings.ToLower(hctx.parsed.Arg(1)))
	if err != nil {
		return Output{}, usagef("%v", err)
	}
	name := hctx.parsed.Arg(0)
	if err := hctx.app.Health.UpdatePlayerBarrier(name, dir); err != nil {
		return Output{}, err
	}
	return success("Barrier of %s updated.", name), nil
}

// handleShield refills a shield or damages it by the current hit.
func handleShield(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 2 {
		return Output{}, usagef("a name and reset or damage are required")
	}
	name := hctx.parsed.Arg(0)
	switch strings.ToLower(hctx.parsed.Arg(1)) {
	case "reset":
		if err := hctx.app.Health.ResetPlayerShield(name); err != nil {
			return Output{}, err
		}
		return success("Shield of %s reset.", name), nil
	case "damage", "remove":
		if err := hctx.app.Health.DamageShield(name); err != nil {
			return Output{}, err
		}
		return success("Shield of %s damaged.", name), nil
	}
	return Output{}, usagef("unknown shield action %q", hctx.parsed.Arg(1))
}

func handleDrain(hctx *handlerContext) (Output, error) {
	name := hctx.parsed.RawArgs
	if len(hctx.parsed.Args) == 1 {
		name = hctx.parsed.Arg(0)
	}
	if name == "" {
		return Output{}, usagef("a summon name is required")
	}
	if err := hctx.app.Health.SummonHealthDrain(name); err != nil {
		return Output{}, err
	}
	return success("%s drained.", name), nil
}

// handleEdit overwrites one character field.
func handleEdit(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 4 {
		return Output{}, usagef("a kind, name, field and value are required")
	}
	kind, name, err := kindAndName(hctx)
	if err != nil {
		return Output{}, err
	}
	value, err := intArg(hctx, 3)
	if err != nil {
		return Output{}, err
	}
	fields := health.PlayerFields
	set := hctx.app.Health.SetPlayerField
	if kind == health.KindSummon {
		fields = health.SummonFields
		set = hctx.app.Health.SetSummonField
	}
	field := hctx.parsed.Arg(2)
	for _, f := range fields {
		if strings.EqualFold(f, field) {
			field = f
			break
		}
	}
	if err := set(name, field, value); err != nil {
		return Output{}, err
	}
	return success("%s %s set.", name, field), nil
}

// handleToken lists, adds, updates or removes token counters.
func handleToken(hctx *handlerContext) (Output, error) {
	action := strings.ToLower(hctx.parsed.Arg(0))
	if action == "" {
		return Output{Text: RenderTokens(hctx.app.Tokens.List())}, nil
	}
	name := hctx.parsed.Arg(1)
	if name == "" {
		return Output{}, usagef("a token name is required")
	}
	store := hctx.app.Tokens
	switch action {
	case "add":
		if err := store.Add(name); err != nil {
			return Output{}, err
		}
		return success("Token %s added.", name), nil
	case "set":
		v, err := intArg(hctx, 2)
		if err != nil {
			return Output{}, err
		}
		if err := store.Update(name, v); err != nil {
			return Output{}, err
		}
		return success("%s = %d.", name, v), nil
	case "inc", "dec":
		cur, _ := store.Get(name)
		delta := 1
		if action == "dec" {
			delta = -1
		}
		if err := store.Update(name, cur+delta); err != nil {
			return Output{}, err
		}
		return success("%s = %d.", name, cur+delta), nil
	case "remove", "rm":
		if err := store.Remove(name); err != nil {
			return Output{}, err
		}
		return success("Token %s removed.", name), nil
	}
	return Output{}, usagef("unknown token action %q", action)
}

// handleNote shows the notes, appends a line, or clears them.
func handleNote(hctx *handlerContext) (Output, error) {
	switch raw := hctx.parsed.RawArgs; {
	case raw == "":
		text := hctx.app.Notes.Text()
		if text == "" {
			return Output{Text: ansi.Colorize(ansi.Dim, "No notes.")}, nil
		}
		return Output{Text: text}, nil
	case strings.EqualFold(raw, "clear"):
		hctx.app.Notes.Clear()
		return success("Notes cleared."), nil
	default:
		hctx.app.Notes.Append(raw)
		return success("Noted."), nil
	}
}

// handleRules shows the rules, imports them from a file, or clears them.
func handleRules(hctx *handlerContext) (Output, error) {
	switch raw := hctx.parsed.RawArgs; {
	case raw == "":
		text := hctx.app.Rules.Text()
		if text == "" {
			return Output{Text: ansi.Colorize(ansi.Dim, "No rules imported.")}, nil
		}
		return Output{Text: text}, nil
	case strings.EqualFold(raw, "clear"):
		hctx.app.Rules.Clear()
		return success("Rules cleared."), nil
	default:
		if err := hctx.app.Rules.ImportFile(hctx.parsed.Arg(0)); err != nil {
			return Output{}, err
		}
		return success("Rules imported."), nil
	}
}

// handleSheet manages the character sheet store.
func handleSheet(hctx *handlerContext) (Output, error) {
	store := hctx.app.Sheets
	ref := strings.Join(hctx.parsed.Args[min(1, len(hctx.parsed.Args)):], " ")
	switch action := strings.ToLower(hctx.parsed.Arg(0)); action {
	case "", "list":
		return Output{Text: RenderSheets(store.Snapshot())}, nil
	case "import":
		if ref == "" {
			return Output{}, usagef("a file path is required")
		}
		e, err := store.ImportFile(ref)
		if err != nil {
			return Output{}, err
		}
		return success("Imported %s (%s).", e.Name, e.Format), nil
	case "remove", "rm":
		e, err := store.Find(ref)
		if err != nil {
			return Output{}, err
		}
		if err := store.Remove(e.ID); err != nil {
			return Output{}, err
		}
		return success("Removed sheet %s.", e.Name), nil
	case "use":
		e, err := store.Find(ref)
		if err != nil {
			return Output{}, err
		}
		if err := store.SetActive(e.ID); err != nil {
			return Output{}, err
		}
		return success("Active sheet is %s.", e.Name), nil
	case "apply":
		e, err := hctx.app.ApplySheet(ref)
		if err != nil {
			return Output{}, err
		}
		return success("Applied %s.", e.Name), nil
	case "show":
		var (
			e   sheet.Entry
			err error
		)
		if ref == "" {
			var ok bool
			if e, ok = store.Active(); !ok {
				err = sheet.ErrSheetNotFound
			}
		} else {
			e, err = store.Find(ref)
		}
		if err != nil {
			return Output{}, err
		}
		return Output{Text: RenderSheet(e)}, nil
	default:
		return Output{}, usagef("unknown sheet action %q", action)
	}
}

// handleRange rolls an inclusive integer range. The value is revealed after
// the random delay.
func handleRange(hctx *handlerContext) (Output, error) {
	if len(hctx.parsed.Args) != 2 {
		return Output{}, usagef("a minimum and a maximum are required")
	}
	lo, err := intArg(hctx, 0)
	if err != nil {
		return Output{}, err
	}
	hi, err := intArg(hctx, 1)
	if err != nil {
		return Output{}, err
	}
	v := hctx.app.Roller.Range(lo, hi)
	text := fmt.Sprintf("Range %d-%d: %s", min(lo, hi), max(lo, hi), ansi.Colorf(ansi.BrightWhite, "%d", v))
	return Output{Reveal: &Reveal{Kind: RevealRandom, Text: text}}, nil
}

// handleChance rolls a percentage check. The outcome is revealed after the
// random delay.
func handleChance(hctx *handlerContext) (Output, error) {
	arg := strings.TrimSuffix(hctx.parsed.Arg(0), "%")
	if arg == "" {
		return Output{}, usagef("a percentage is required")
	}
	pct, err := strconv.Atoi(arg)
	if err != nil {
		return Output{}, usagef("%q is not a whole percentage", hctx.parsed.Arg(0))
	}
	outcome := ansi.Colorize(ansi.BrightRed, "FAIL")
	if hctx.app.Roller.Percent(pct) {
		outcome = ansi.Colorize(ansi.BrightGreen, "SUCCESS")
	}
	text := fmt.Sprintf("Chance %d%%: %s", pct, outcome)
	return Output{Reveal: &Reveal{Kind: RevealRandom, Text: text}}, nil
}

func handleHelp(hctx *handlerContext) (Output, error) {
	return Output{Text: RenderHelp(hctx.registry, hctx.parsed.Arg(0))}, nil
}

func handleQuit(hctx *handlerContext) (Output, error) {
	return Output{Text: "Goodbye.", Quit: true}, nil
}
