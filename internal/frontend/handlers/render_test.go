package handlers_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/frontend/ansi"
	"github.com/cory-johannsen/rotz-assistant/internal/frontend/handlers"
	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/game/history"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

func TestNum(t *testing.T) {
	assert.Equal(t, "3", handlers.Num(3))
	assert.Equal(t, "3.33", handlers.Num(10.0/3))
	assert.Equal(t, "0.5", handlers.Num(0.5))
	assert.Equal(t, "0", handlers.Num(0))
}

func TestRenderAttack(t *testing.T) {
	st := damage.State{
		AttackName: "Chain Lightning",
		Config: damage.Config{
			CritChance: 15, Power: 80, RuneFlat: 12, RuneScaling: 40, RuneAccuracy: 3,
			Modifiers: damage.Modifiers{Encouraged: true},
		},
	}
	out := ansi.StripANSI(handlers.RenderAttack(st, damage.RulesetAccuracy, 0))
	assert.Contains(t, out, "Attack: Chain Lightning")
	assert.Contains(t, out, "runeAccuracy 3")
	assert.NotContains(t, out, "maxValue")
	assert.Contains(t, out, "max hit 44")
	assert.NotContains(t, out, "(custom)")

	st.CustomHit = 9
	out = ansi.StripANSI(handlers.RenderAttack(st, damage.RulesetMaxHit, 9))
	assert.Contains(t, out, "maxValue 0")
	assert.Contains(t, out, "hit 9 (custom)")
}

func TestRenderResult(t *testing.T) {
	assert.Equal(t, "No roll yet.", ansi.StripANSI(handlers.RenderResult(damage.Result{})))

	res := damage.Result{Critical: true, DiceSides: 14.67, MinimumDamage: 2, Rolls: []float64{1, 9}, TotalDamage: 11}
	out := ansi.StripANSI(handlers.RenderResult(res))
	assert.Contains(t, out, "Last Result - CRIT 11")
	assert.Contains(t, out, "d14.67, min 2: 1+1 9")

	res.Critical = false
	assert.Equal(t, "Last Result - 11", ansi.StripANSI(handlers.ResultTitle(res)))
}

func TestRenderRoster(t *testing.T) {
	assert.Equal(t, "No characters tracked.", ansi.StripANSI(handlers.RenderRoster(health.Roster{})))

	out := ansi.StripANSI(handlers.RenderRoster(health.Roster{
		Players: []health.Player{{Name: "Aria", CurrentHealth: 40, MaxHealth: 120, CurrentShield: 5, MaxShield: 30, ShieldDurability: 2, Barrier: 6}},
		Summons: []health.Summon{{Name: "Spark", CurrentHealth: 0, MaxHealth: 15, HealthDrain: 5}},
	}))
	assert.Contains(t, out, "Players")
	assert.Contains(t, out, "hp 40/120")
	assert.Contains(t, out, "shield 5/30")
	assert.Contains(t, out, "barrier 6")
	assert.Contains(t, out, "Summons")
	assert.Contains(t, out, "hp 0/15")
	assert.Contains(t, out, "drain 5")
}

func TestRenderHistory(t *testing.T) {
	assert.Equal(t, "No attacks recorded.", ansi.StripANSI(handlers.RenderHistory(nil)))

	at := time.Date(2026, 3, 1, 20, 15, 0, 0, time.UTC)
	out := ansi.StripANSI(handlers.RenderHistory([]history.Attack{
		{Name: "Chain Lightning", Time: at, Result: damage.Result{Critical: true, Rolls: []float64{4}, TotalDamage: 40}},
		{Name: "Custom", Time: at, Result: damage.Result{Rolls: []float64{4}, TotalDamage: 4}},
	}))
	assert.Contains(t, out, " 1. 20:15:00 Chain Lightning CRIT  40")
	assert.Contains(t, out, " 2. 20:15:00 Custom  4")
}

func TestRenderSheets(t *testing.T) {
	assert.Equal(t, "No character sheets.", ansi.StripANSI(handlers.RenderSheets(sheet.Collection{})))

	id := uuid.MustParse("6f1c2a9e-0000-4000-8000-000000000001")
	out := ansi.StripANSI(handlers.RenderSheets(sheet.Collection{
		Sheets: []sheet.Entry{{ID: id, Name: "Bram", Format: sheet.FormatMarkdown}},
		Active: id,
	}))
	assert.Contains(t, out, "* 6f1c2a9e Bram")
	assert.Contains(t, out, "markdown")
}

func TestRenderPresets(t *testing.T) {
	out := ansi.StripANSI(handlers.RenderPresets([]damage.Preset{{Name: "Fireball", RuneFlat: 20, RuneScaling: 50, RuneAccuracy: 2}}))
	assert.Contains(t, out, "Fireball")
	assert.Contains(t, out, "flat 20 scaling 50 accuracy 2")
}

// Property: Num never renders more than two decimals.
func TestProperty_NumAtMostTwoDecimals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := rapid.Float64Range(-1e6, 1e6).Draw(t, "f")
		s := handlers.Num(f)
		for i := range s {
			if s[i] == '.' {
				assert.LessOrEqual(t, len(s)-i-1, 2, "%s has too many decimals", s)
			}
		}
	})
}
