package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

func newEngines() (*damage.Engine, *health.Tracker) {
	eng := damage.NewEngine(damage.AccuracyRuleset{}, dice.NewSeededSource(1), zap.NewNop(), damage.DefaultCritChance)
	return eng, health.NewTracker(eng, zap.NewNop())
}

func jsonEntry(t *testing.T) sheet.Entry {
	t.Helper()
	e, err := newStore().AddJSON(validSheet(t))
	require.NoError(t, err)
	return e
}

func TestApply_FeedsEngines(t *testing.T) {
	eng, tr := newEngines()
	require.NoError(t, sheet.Apply(jsonEntry(t), eng, tr))

	cfg := eng.Snapshot().Config
	assert.Equal(t, 80.0, cfg.Power)
	assert.Equal(t, 15, cfg.CritChance)

	p, ok := tr.Snapshot().Player("Aria")
	require.True(t, ok)
	assert.Equal(t, health.Player{
		Name:             "Aria",
		CurrentHealth:    120,
		MaxHealth:        120,
		CurrentShield:    30,
		MaxShield:        30,
		ShieldDurability: 2,
	}, p)
}

func TestApply_EmptyNameChangesNothing(t *testing.T) {
	eng, tr := newEngines()
	e := jsonEntry(t)
	e.Name = ""
	info := e.JSON.Info
	info.ShortName = ""
	sh := *e.JSON
	sh.Info = info
	e.JSON = &sh
	before := eng.Snapshot().Config

	assert.ErrorIs(t, sheet.Apply(e, eng, tr), health.ErrEmptyName)
	assert.Equal(t, before, eng.Snapshot().Config)
	players, _ := tr.Len()
	assert.Equal(t, 0, players)
}

func TestApply_MarkdownRejected(t *testing.T) {
	eng, tr := newEngines()
	md, err := newStore().AddMarkdown("# Brom")
	require.NoError(t, err)
	assert.ErrorIs(t, sheet.Apply(md, eng, tr), sheet.ErrMarkdownSheet)
	players, _ := tr.Len()
	assert.Equal(t, 0, players)
}

func TestLoadRune(t *testing.T) {
	eng, _ := newEngines()
	require.NoError(t, eng.SetModifier(damage.ModifierEncouraged, true))

	name, err := sheet.LoadRune(jsonEntry(t), "chain lightning", eng)
	require.NoError(t, err)
	assert.Equal(t, "Chain Lightning", name)

	st := eng.Snapshot()
	assert.Equal(t, "Chain Lightning", st.AttackName)
	assert.Equal(t, 12.0, st.Config.RuneFlat)
	assert.Equal(t, 40.0, st.Config.RuneScaling)
	assert.Equal(t, 3.0, st.Config.RuneAccuracy)
	assert.True(t, st.Config.Modifiers.Encouraged, "modifiers survive a rune load")
}

func TestLoadRune_Errors(t *testing.T) {
	eng, _ := newEngines()
	e := jsonEntry(t)
	before := eng.Snapshot()

	_, err := sheet.LoadRune(e, "Mend", eng)
	assert.ErrorIs(t, err, sheet.ErrRuneWithoutDamage)
	_, err = sheet.LoadRune(e, "Fireball", eng)
	assert.ErrorIs(t, err, sheet.ErrRuneNotFound)

	md, _ := newStore().AddMarkdown("# Brom")
	_, err = sheet.LoadRune(md, "Chain Lightning", eng)
	assert.ErrorIs(t, err, sheet.ErrMarkdownSheet)

	assert.Equal(t, before, eng.Snapshot())
}

func TestRuneConfig_DefaultAccuracy(t *testing.T) {
	s, err := sheet.ParseJSON(mutateSheet(t, func(doc map[string]any) {
		delete(obj(obj(obj(doc["runes"])["primary"])["Chain Lightning"]), "accuracy")
	}))
	require.NoError(t, err)
	_, cfg, err := s.RuneConfig("Chain Lightning", damage.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.RuneAccuracy)
}
