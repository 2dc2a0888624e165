package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/game/command"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/game/history"
	"github.com/cory-johannsen/rotz-assistant/internal/game/tokens"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

var title = cases.Title(language.English)

// Num formats a number the way every panel shows it: at most two decimals,
// no trailing zeros.
func Num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// RenderAttack formats the attack configuration panel.
func RenderAttack(st damage.State, ruleset string, hit int) string {
	var b strings.Builder
	b.WriteString(ansi.Colorf(ansi.BrightYellow, "Attack: %s", st.AttackName))
	b.WriteString(ansi.Colorf(ansi.Dim, "  [%s]", ruleset))
	b.WriteString("\n")

	cfg := st.Config
	parts := make([]string, 0, len(damage.Fields))
	for _, f := range damage.Fields {
		if f == damage.FieldMaxValue && ruleset != damage.RulesetMaxHit {
			continue
		}
		v, _ := cfg.Get(f)
		parts = append(parts, fmt.Sprintf("%s%s%s %s", ansi.Cyan, f, ansi.Reset, Num(v)))
	}
	b.WriteString("  " + strings.Join(parts, "  ") + "\n")

	mods := make([]string, 0, len(damage.AllModifiers))
	for _, m := range damage.AllModifiers {
		on, _ := cfg.Modifiers.Get(m)
		if on {
			mods = append(mods, ansi.Colorize(ansi.BrightGreen, string(m)))
		} else {
			mods = append(mods, ansi.Colorize(ansi.Dim, string(m)))
		}
	}
	b.WriteString("  modifiers: " + strings.Join(mods, " ") + "\n")

	hitLabel := strconv.Itoa(hit)
	if st.CustomHit != 0 {
		hitLabel += ansi.Colorize(ansi.Magenta, " (custom)")
	}
	b.WriteString(fmt.Sprintf("  max hit %s  hit %s", Num(cfg.MaxHit()), hitLabel))
	return b.String()
}

// ResultTitle is the heading of the last result panel.
func ResultTitle(res damage.Result) string {
	if res.IsEmpty() {
		return "Last Result"
	}
	if res.Critical {
		return ansi.Colorf(ansi.BrightRed, "Last Result - CRIT %d", res.TotalDamage)
	}
	return fmt.Sprintf("Last Result - %d", res.TotalDamage)
}

// RenderResult formats a roll result without bars.
func RenderResult(res damage.Result) string {
	if res.IsEmpty() {
		return ansi.Colorize(ansi.Dim, "No roll yet.")
	}
	rolls := make([]string, len(res.Rolls))
	for i, r := range res.Rolls {
		if r < res.MinimumDamage {
			rolls[i] = Num(r) + ansi.Colorf(ansi.Green, "+%s", Num(res.MinimumDamage-r))
		} else {
			rolls[i] = Num(r)
		}
	}
	return fmt.Sprintf("%s\n  d%s, min %s: %s",
		ansi.Colorize(ansi.BrightWhite, ResultTitle(res)),
		Num(res.DiceSides), Num(res.MinimumDamage), strings.Join(rolls, " "))
}

// RenderRoster formats the health tracker.
func RenderRoster(r health.Roster) string {
	if len(r.Players) == 0 && len(r.Summons) == 0 {
		return ansi.Colorize(ansi.Dim, "No characters tracked.")
	}
	var b strings.Builder
	if len(r.Players) > 0 {
		b.WriteString(ansi.Colorize(ansi.BrightYellow, "Players"))
		for _, p := range r.Players {
			b.WriteString(fmt.Sprintf("\n  %s %s  shield %s  dur %d",
				ansi.PadRight(ansi.Colorize(ansi.BrightWhite, p.Name), 16),
				healthLabel(p.CurrentHealth, p.MaxHealth),
				ansi.Colorf(ansi.Cyan, "%d/%d", p.CurrentShield, p.MaxShield),
				p.ShieldDurability))
			if p.Barrier > 0 {
				b.WriteString(ansi.Colorf(ansi.BrightBlue, "  barrier %d", p.Barrier))
			}
		}
	}
	if len(r.Summons) > 0 {
		if len(r.Players) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(ansi.Colorize(ansi.BrightYellow, "Summons"))
		for _, s := range r.Summons {
			b.WriteString(fmt.Sprintf("\n  %s %s  drain %d",
				ansi.PadRight(ansi.Colorize(ansi.BrightWhite, s.Name), 16),
				healthLabel(s.CurrentHealth, s.MaxHealth),
				s.HealthDrain))
		}
	}
	return b.String()
}

func healthLabel(cur, maxHP int) string {
	color := ansi.Green
	switch {
	case cur == 0:
		color = ansi.Red
	case cur*2 <= maxHP:
		color = ansi.Yellow
	}
	return ansi.Colorf(color, "hp %d/%d", cur, maxHP)
}

// RenderTokens formats the token counters.
func RenderTokens(list []tokens.Token) string {
	if len(list) == 0 {
		return ansi.Colorize(ansi.Dim, "No tokens.")
	}
	parts := make([]string, len(list))
	for i, t := range list {
		parts[i] = fmt.Sprintf("%s %s", t.Name, ansi.Colorf(ansi.BrightCyan, "%d", t.Value))
	}
	return strings.Join(parts, "  ")
}

// RenderHistory formats the attack history, newest first, numbered from 1.
func RenderHistory(list []history.Attack) string {
	if len(list) == 0 {
		return ansi.Colorize(ansi.Dim, "No attacks recorded.")
	}
	var b strings.Builder
	b.WriteString(ansi.Colorize(ansi.BrightWhite, "Attack history"))
	for i, a := range list {
		crit := ""
		if a.Result.Critical {
			crit = ansi.Colorize(ansi.BrightRed, " CRIT")
		}
		b.WriteString(fmt.Sprintf("\n  %2d. %s %s%s  %s",
			i+1,
			a.Time.Format("15:04:05"),
			ansi.Colorize(ansi.BrightYellow, a.Name),
			crit,
			ansi.Colorf(ansi.BrightWhite, "%d", a.Result.TotalDamage)))
	}
	return b.String()
}

// RenderPresets lists the attack preset library.
func RenderPresets(list []damage.Preset) string {
	if len(list) == 0 {
		return ansi.Colorize(ansi.Dim, "No presets loaded.")
	}
	var b strings.Builder
	b.WriteString(ansi.Colorize(ansi.BrightWhite, "Presets"))
	for _, p := range list {
		b.WriteString(fmt.Sprintf("\n  %s flat %s scaling %s accuracy %s",
			ansi.PadRight(ansi.Colorize(ansi.BrightYellow, p.Name), 20),
			Num(p.RuneFlat), Num(p.RuneScaling), Num(p.RuneAccuracy)))
	}
	return b.String()
}

// RenderSheets lists the stored character sheets and marks the active one.
func RenderSheets(c sheet.Collection) string {
	if len(c.Sheets) == 0 {
		return ansi.Colorize(ansi.Dim, "No character sheets.")
	}
	var b strings.Builder
	b.WriteString(ansi.Colorize(ansi.BrightWhite, "Character sheets"))
	for _, e := range c.Sheets {
		marker := " "
		if e.ID == c.Active {
			marker = ansi.Colorize(ansi.BrightGreen, "*")
		}
		b.WriteString(fmt.Sprintf("\n  %s %s %s %s",
			marker,
			ansi.Colorize(ansi.Dim, e.ID.String()[:8]),
			ansi.PadRight(ansi.Colorize(ansi.BrightYellow, e.Name), 20),
			ansi.Colorf(ansi.Dim, "%s, added %s", e.Format, e.AddedAt.Format("2006-01-02 15:04"))))
	}
	return b.String()
}

// RenderSheet formats one sheet. Markdown sheets are shown as written.
func RenderSheet(e sheet.Entry) string {
	if e.Format != sheet.FormatJSON || e.JSON == nil {
		return e.Markdown
	}
	s := e.JSON
	st := s.Info.Stats
	var b strings.Builder
	b.WriteString(ansi.Colorize(ansi.BrightYellow, s.Info.Name))
	if s.Info.ShortName != "" && s.Info.ShortName != s.Info.Name {
		b.WriteString(ansi.Colorf(ansi.Dim, " (%s)", s.Info.ShortName))
	}
	b.WriteString(fmt.Sprintf("\n  health %s  power %s  crit %s%%  shield %s/%s  movement %s  range %s",
		Num(st.Health), Num(st.Power), Num(st.CritChance),
		Num(st.Shield[0]), Num(st.Shield[1]), Num(st.Movement), Num(st.BasicRange)))
	if names := s.PrimaryNames(); len(names) > 0 {
		b.WriteString("\n  " + ansi.Colorize(ansi.Cyan, "runes") + " ")
		for i, n := range names {
			if i > 0 {
				b.WriteString(", ")
			}
			r := s.Runes.Primary[n]
			if r.Damage != nil {
				b.WriteString(fmt.Sprintf("%s [%s+%s]", n, Num(r.Damage[0]), Num(r.Damage[1])))
			} else {
				b.WriteString(n)
			}
		}
	}
	return b.String()
}

// RenderHelp lists registered commands by category, or the synopsis of one
// command when name is set.
func RenderHelp(reg *command.Registry, name string) string {
	if name != "" {
		cmd, ok := reg.Resolve(name)
		if !ok {
			return ansi.Colorf(ansi.Red, "Unknown command %q.", name)
		}
		out := ansi.Colorize(ansi.BrightGreen, cmd.Synopsis()) + "\n  " + cmd.Help
		if len(cmd.Aliases) > 0 {
			out += ansi.Colorf(ansi.Dim, "\n  aliases: %s", strings.Join(cmd.Aliases, ", "))
		}
		return out
	}

	var b strings.Builder
	b.WriteString(ansi.Colorize(ansi.BrightWhite, "Available commands:"))
	byCategory := reg.CommandsByCategory()
	for _, cat := range command.CategoryOrder {
		cmds := byCategory[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(ansi.Colorf(ansi.BrightYellow, "\n  %s:", title.String(cat)))
		for _, cmd := range cmds {
			b.WriteString("\n    " + ansi.PadRight(ansi.Colorize(ansi.Green, cmd.Synopsis()), 44) + cmd.Help)
		}
	}
	return b.String()
}
