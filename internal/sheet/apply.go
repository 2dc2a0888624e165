package sheet

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
)

// ErrRuneNotFound is returned when a sheet has no primary rune of that name.
var ErrRuneNotFound = errors.New("rune not found")

// ErrRuneWithoutDamage is returned when loading a rune that deals no damage.
var ErrRuneWithoutDamage = errors.New("rune has no damage")

// NumberSetter receives the attack stats of a sheet.
type NumberSetter interface {
	UpdateNumber(f damage.Field, value float64) error
}

// PlayerAdder receives the health and shield stats of a sheet.
type PlayerAdder interface {
	AddPlayer(name string, shieldAmount, shieldDurability, maxHealth int) error
}

// PresetLoader receives a rune as a named attack preset.
type PresetLoader interface {
	Snapshot() damage.State
	LoadPreset(name string, cfg damage.Config)
}

// Apply feeds the sheet stats into the engines: power and crit chance into
// the damage calculator, and a player named after the short name with the
// sheet's shield and health into the tracker.
//
// Postcondition: on error neither engine is changed.
func Apply(e Entry, dmg NumberSetter, hp PlayerAdder) error {
	if e.Format != FormatJSON || e.JSON == nil {
		return fmt.Errorf("applying %q: %w", e.Name, ErrMarkdownSheet)
	}
	stats := e.JSON.Info.Stats
	name := e.JSON.Info.ShortName
	if name == "" {
		name = e.Name
	}
	// AddPlayer runs first; it is the only step that can reject sheet data.
	err := hp.AddPlayer(name, round(stats.Shield[0]), round(stats.Shield[1]), round(stats.Health))
	if err != nil {
		return fmt.Errorf("applying %q: %w", e.Name, err)
	}
	if err := dmg.UpdateNumber(damage.FieldPower, stats.Power); err != nil {
		return fmt.Errorf("applying %q: %w", e.Name, err)
	}
	if err := dmg.UpdateNumber(damage.FieldCritChance, stats.CritChance); err != nil {
		return fmt.Errorf("applying %q: %w", e.Name, err)
	}
	return nil
}

// Rune returns the primary rune whose name matches name case-insensitively.
func (s Sheet) Rune(name string) (string, PrimaryRune, error) {
	if r, ok := s.Runes.Primary[name]; ok {
		return name, r, nil
	}
	for _, n := range s.PrimaryNames() {
		if strings.EqualFold(n, name) {
			return n, s.Runes.Primary[n], nil
		}
	}
	return "", PrimaryRune{}, fmt.Errorf("%q: %w", name, ErrRuneNotFound)
}

// RuneConfig returns base with the rune numbers of the named primary rune.
// A rune without an accuracy rolls with accuracy 1.
func (s Sheet) RuneConfig(name string, base damage.Config) (string, damage.Config, error) {
	n, r, err := s.Rune(name)
	if err != nil {
		return "", base, err
	}
	if r.Damage == nil {
		return "", base, fmt.Errorf("%q: %w", n, ErrRuneWithoutDamage)
	}
	base.RuneFlat = r.Damage[0]
	base.RuneScaling = r.Damage[1]
	base.RuneAccuracy = 1
	if r.Accuracy != nil {
		base.RuneAccuracy = *r.Accuracy
	}
	return n, base, nil
}

// LoadRune loads the named primary rune of the sheet into the damage
// calculator as a preset named after the rune.
func LoadRune(e Entry, rune string, target PresetLoader) (string, error) {
	if e.Format != FormatJSON || e.JSON == nil {
		return "", fmt.Errorf("loading rune from %q: %w", e.Name, ErrMarkdownSheet)
	}
	name, cfg, err := e.JSON.RuneConfig(rune, target.Snapshot().Config)
	if err != nil {
		return "", fmt.Errorf("loading rune from %q: %w", e.Name, err)
	}
	target.LoadPreset(name, cfg)
	return name, nil
}

func round(f float64) int {
	return int(math.Round(f))
}
