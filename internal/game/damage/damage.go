// Package damage implements the attack damage calculator: the attack
// configuration, the roll result, and the rulesets that turn one into the
// other.
package damage

import (
	"errors"
	"fmt"
	"math"
)

// DefaultAttackName labels a configuration that does not match a preset.
const DefaultAttackName = "Custom"

// DefaultCritChance is the crit chance of a fresh engine.
const DefaultCritChance = 5

// MaxDice bounds the number of dice a single roll may produce.
const MaxDice = 1000

// MaxTotalDamage caps the total damage of a single result.
const MaxTotalDamage = math.MaxInt32

// TotalDamageOf converts a rounded damage sum to a result total.
//
// Postcondition: 0 <= TotalDamageOf(f) <= MaxTotalDamage; NaN and negatives map to 0.
func TotalDamageOf(f float64) int {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= MaxTotalDamage:
		return MaxTotalDamage
	}
	return int(f)
}

var (
	// ErrZeroAccuracy is returned by the accuracy ruleset when rune accuracy is 0.
	ErrZeroAccuracy = errors.New("rune accuracy must be greater than zero")
	// ErrZeroMaxValue is returned by the max-hit ruleset when the max value is 0.
	ErrZeroMaxValue = errors.New("max value must be greater than zero")
	// ErrUnknownField is returned when updating a field that does not exist.
	ErrUnknownField = errors.New("unknown attack field")
	// ErrUnknownModifier is returned when toggling a modifier that does not exist.
	ErrUnknownModifier = errors.New("unknown modifier")
	// ErrInvalidResult is returned when a ruleset produces a result that
	// violates the result invariants.
	ErrInvalidResult = errors.New("invalid roll result")
)

// Field names a numeric attack configuration field.
type Field string

const (
	FieldCritChance   Field = "critChance"
	FieldPower        Field = "power"
	FieldRuneFlat     Field = "runeFlat"
	FieldRuneScaling  Field = "runeScaling"
	FieldRuneAccuracy Field = "runeAccuracy"
	FieldMaxValue     Field = "maxValue"
)

// Fields lists every numeric field in display order.
var Fields = []Field{FieldCritChance, FieldPower, FieldRuneFlat, FieldRuneScaling, FieldRuneAccuracy, FieldMaxValue}

// isRuneField reports whether changing f means the configuration no longer
// matches a named preset.
func (f Field) isRuneField() bool {
	return f == FieldRuneFlat || f == FieldRuneScaling || f == FieldRuneAccuracy
}

// Modifier names a boolean roll modifier.
type Modifier string

const (
	ModifierConfused   Modifier = "confused"
	ModifierEncouraged Modifier = "encouraged"
	ModifierDodge      Modifier = "dodge"
	ModifierPerfect    Modifier = "perfect"
)

// AllModifiers lists every modifier in display order.
var AllModifiers = []Modifier{ModifierConfused, ModifierEncouraged, ModifierDodge, ModifierPerfect}

// Modifiers holds the modifier flags of an attack.
type Modifiers struct {
	Confused   bool `json:"confused" yaml:"confused"`
	Encouraged bool `json:"encouraged" yaml:"encouraged"`
	Dodge      bool `json:"dodge" yaml:"dodge"`
	Perfect    bool `json:"perfect" yaml:"perfect"`
}

// Get returns the flag for m.
func (m Modifiers) Get(mod Modifier) (bool, error) {
	switch mod {
	case ModifierConfused:
		return m.Confused, nil
	case ModifierEncouraged:
		return m.Encouraged, nil
	case ModifierDodge:
		return m.Dodge, nil
	case ModifierPerfect:
		return m.Perfect, nil
	}
	return false, ErrUnknownModifier
}

// With returns a copy of m with mod set to enabled.
func (m Modifiers) With(mod Modifier, enabled bool) (Modifiers, error) {
	switch mod {
	case ModifierConfused:
		m.Confused = enabled
	case ModifierEncouraged:
		m.Encouraged = enabled
	case ModifierDodge:
		m.Dodge = enabled
	case ModifierPerfect:
		m.Perfect = enabled
	default:
		return m, ErrUnknownModifier
	}
	return m, nil
}

// Any reports whether at least one modifier is set.
func (m Modifiers) Any() bool {
	return m.Confused || m.Encouraged || m.Dodge || m.Perfect
}

// Config is the attack configuration a roll is computed from.
//
// Invariant: 0 <= CritChance <= 100; every float field is finite and >= 0.
type Config struct {
	CritChance   int       `json:"critChance"`
	Power        float64   `json:"power"`
	RuneFlat     float64   `json:"runeFlat"`
	RuneScaling  float64   `json:"runeScaling"`
	RuneAccuracy float64   `json:"runeAccuracy"`
	MaxValue     float64   `json:"maxValue"`
	Modifiers    Modifiers `json:"modifiers"`
}

// DefaultConfig returns the configuration of a fresh engine.
func DefaultConfig() Config {
	return Config{CritChance: DefaultCritChance}
}

// Get returns the value of field f.
func (c Config) Get(f Field) (float64, error) {
	switch f {
	case FieldCritChance:
		return float64(c.CritChance), nil
	case FieldPower:
		return c.Power, nil
	case FieldRuneFlat:
		return c.RuneFlat, nil
	case FieldRuneScaling:
		return c.RuneScaling, nil
	case FieldRuneAccuracy:
		return c.RuneAccuracy, nil
	case FieldMaxValue:
		return c.MaxValue, nil
	}
	return 0, ErrUnknownField
}

// With returns a copy of c with field f set to value, clamped into range.
func (c Config) With(f Field, value float64) (Config, error) {
	v := nonNegative(value)
	switch f {
	case FieldCritChance:
		c.CritChance = clampPercent(v)
	case FieldPower:
		c.Power = v
	case FieldRuneFlat:
		c.RuneFlat = v
	case FieldRuneScaling:
		c.RuneScaling = v
	case FieldRuneAccuracy:
		c.RuneAccuracy = v
	case FieldMaxValue:
		c.MaxValue = v
	default:
		return c, ErrUnknownField
	}
	return c, nil
}

// Sanitized returns c with every field clamped into its valid range.
func (c Config) Sanitized() Config {
	c.CritChance = clampPercent(float64(c.CritChance))
	c.Power = nonNegative(c.Power)
	c.RuneFlat = nonNegative(c.RuneFlat)
	c.RuneScaling = nonNegative(c.RuneScaling)
	c.RuneAccuracy = nonNegative(c.RuneAccuracy)
	c.MaxValue = nonNegative(c.MaxValue)
	return c
}

// MaxHit is the highest damage the rune can deal before dice are split:
// runeFlat + power% of runeScaling.
func (c Config) MaxHit() float64 {
	return c.RuneFlat + (c.Power/100)*c.RuneScaling
}

// Result is the outcome of one roll. A Result is never mutated after it is
// produced; the engine replaces it wholesale.
//
// Invariant: len(Rolls) >= 1 and 0 <= TotalDamage <= MaxTotalDamage for every rolled result.
type Result struct {
	Critical      bool      `json:"crit"`
	DiceSides     float64   `json:"diceSides"`
	MinimumDamage float64   `json:"minDamage"`
	Rolls         []float64 `json:"rolls"`
	TotalDamage   int       `json:"damage"`
	Ruleset       string    `json:"ruleset,omitempty"`
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	if r.Rolls != nil {
		r.Rolls = append([]float64(nil), r.Rolls...)
	}
	return r
}

// IsEmpty reports whether r is the zero result shown before the first roll.
func (r Result) IsEmpty() bool {
	return len(r.Rolls) == 0
}

// Validate checks the result invariants.
func (r Result) Validate() error {
	if len(r.Rolls) < 1 {
		return errors.Join(ErrInvalidResult, errors.New("at least one roll is required"))
	}
	if len(r.Rolls) > MaxDice {
		return errors.Join(ErrInvalidResult, errors.New("too many rolls"))
	}
	for _, v := range r.Rolls {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Join(ErrInvalidResult, errors.New("rolls must be finite"))
		}
	}
	if r.TotalDamage < 0 || r.TotalDamage > MaxTotalDamage {
		return errors.Join(ErrInvalidResult, fmt.Errorf("total damage must be in [0, %d]", MaxTotalDamage))
	}
	if math.IsNaN(r.DiceSides) || math.IsInf(r.DiceSides, 0) || math.IsNaN(r.MinimumDamage) || math.IsInf(r.MinimumDamage, 0) {
		return errors.Join(ErrInvalidResult, errors.New("dice sides and minimum damage must be finite"))
	}
	return nil
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
