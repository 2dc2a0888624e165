package dashboard

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/handlers"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
)

const (
	// defaultHeight is used until the terminal reports its size.
	defaultHeight = 40
	// maxBars is the number of dice drawn as bars; the rest are summarized.
	maxBars = 12
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye.\n"
	}
	st := m.app.Damage.Snapshot()

	sections := []string{
		ansi.Colorize(ansi.Bold+ansi.BrightMagenta, "RotZ Assistant"),
		handlers.RenderAttack(st, m.app.Damage.Ruleset(), m.app.Damage.Hit()),
		m.resultView(st.Result),
		handlers.RenderRoster(m.app.Health.Snapshot()),
		ansi.Colorize(ansi.Cyan, "Tokens: ") + handlers.RenderTokens(m.app.Tokens.List()),
	}
	top := strings.Join(sections, "\n\n")

	var footer []string
	if m.anim.kind == handlers.RevealRandom {
		footer = append(footer, m.spinner.View()+" rolling...")
	}
	if err := m.status.get(); err != nil {
		footer = append(footer, ansi.Colorf(ansi.BrightRed, "Autosave failed: %v", err))
	}
	footer = append(footer, m.input.View())

	height := m.height
	if height <= 0 {
		height = defaultHeight
	}
	room := height - strings.Count(top, "\n") - len(footer) - 3
	log := m.log
	if room <= 0 {
		log = nil
	} else if len(log) > room {
		log = log[len(log)-room:]
	}

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n\n")
	if len(log) > 0 {
		b.WriteString(strings.Join(log, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(footer, "\n"))
	return b.String()
}

// resultView shows the animated dice while a roll is being revealed and the
// settled result otherwise.
func (m Model) resultView(res damage.Result) string {
	if m.anim.kind == handlers.RevealRoll {
		r := m.anim.result
		return ansi.Colorize(ansi.BrightWhite, "Rolling...") + "\n" + m.bars(m.anim.display, r.DiceSides, 0)
	}
	if res.IsEmpty() {
		return handlers.RenderResult(res)
	}
	return ansi.Colorize(ansi.BrightWhite, handlers.ResultTitle(res)) + "\n" + m.bars(res.Rolls, res.DiceSides, res.MinimumDamage)
}

// bars renders one progress bar per die, filled by the die's share of sides.
// A die below the minimum damage is shown with the top-up it receives.
func (m Model) bars(rolls []float64, sides, minimum float64) string {
	shown := rolls[:min(len(rolls), maxBars)]
	lines := make([]string, len(shown), len(shown)+1)
	for i, r := range shown {
		pct := 0.0
		if sides > 0 {
			pct = min(1, max(0, r/sides))
		}
		label := handlers.Num(r)
		if minimum > r {
			label += ansi.Colorf(ansi.Green, " +%s", handlers.Num(minimum-r))
		}
		lines[i] = fmt.Sprintf("  %s %s", m.bar.ViewAs(pct), label)
	}
	if hidden := len(rolls) - len(shown); hidden > 0 {
		lines = append(lines, ansi.Colorf(ansi.Dim, "  ... %d more dice", hidden))
	}
	return strings.Join(lines, "\n")
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
