// Package health tracks player and summon health, shields and barriers and
// applies damage read from a DamageSource.
package health

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyName is returned when adding a character without a name.
	ErrEmptyName = errors.New("character name must not be empty")
	// ErrCharacterNotFound is returned when a command names a character that is not on the roster.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrUnknownKind is returned for a roster kind other than players or summons.
	ErrUnknownKind = errors.New("unknown character kind")
	// ErrUnknownDirection is returned for a direction other than add or remove.
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrUnknownField is returned by direct edits naming a field the character does not have.
	ErrUnknownField = errors.New("unknown character field")
)

// Kind selects one of the two rosters.
type Kind string

const (
	KindPlayer Kind = "players"
	KindSummon Kind = "summons"
)

// ParseKind accepts the roster names and their singular forms.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "players", "player":
		return KindPlayer, nil
	case "summons", "summon":
		return KindSummon, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Direction is the sign of a health or barrier update.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// ParseDirection accepts add/remove and the heal/damage aliases.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "add", "heal":
		return DirectionAdd, nil
	case "remove", "damage":
		return DirectionRemove, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Player is a party member with a resettable shield and a barrier that
// absorbs damage before the shield does.
//
// Invariant: 0 <= CurrentHealth <= MaxHealth; 0 <= CurrentShield <= MaxShield.
type Player struct {
	Name             string `json:"name"`
	CurrentHealth    int    `json:"currentHealth"`
	MaxHealth        int    `json:"maxHealth"`
	CurrentShield    int    `json:"currentShield"`
	MaxShield        int    `json:"maxShield"`
	ShieldDurability int    `json:"shieldDurability"`
	Barrier          int    `json:"barrier"`
}

// Summon is a temporary character whose max health decays by HealthDrain
// every time it is drained.
//
// Invariant: 0 <= CurrentHealth <= MaxHealth.
type Summon struct {
	Name          string `json:"name"`
	CurrentHealth int    `json:"currentHealth"`
	MaxHealth     int    `json:"maxHealth"`
	HealthDrain   int    `json:"healthDrain"`
}

// Player field names accepted by SetPlayerField.
const (
	FieldCurrentHealth    = "currentHealth"
	FieldMaxHealth        = "maxHealth"
	FieldCurrentShield    = "currentShield"
	FieldMaxShield        = "maxShield"
	FieldShieldDurability = "shieldDurability"
	FieldBarrier          = "barrier"
	FieldHealthDrain      = "healthDrain"
)

// PlayerFields lists the fields SetPlayerField accepts.
var PlayerFields = []string{FieldCurrentHealth, FieldMaxHealth, FieldCurrentShield, FieldMaxShield, FieldShieldDurability, FieldBarrier}

// SummonFields lists the fields SetSummonField accepts.
var SummonFields = []string{FieldCurrentHealth, FieldMaxHealth, FieldHealthDrain}

func (p Player) with(field string, v int) (Player, error) {
	v = max(v, 0)
	switch field {
	case FieldCurrentHealth:
		p.CurrentHealth = v
	case FieldMaxHealth:
		p.MaxHealth = v
	case FieldCurrentShield:
		p.CurrentShield = v
	case FieldMaxShield:
		p.MaxShield = v
	case FieldShieldDurability:
		p.ShieldDurability = v
	case FieldBarrier:
		p.Barrier = v
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return p.normalized(), nil
}

func (p Player) normalized() Player {
	p.MaxHealth = max(p.MaxHealth, 0)
	p.CurrentHealth = clamp(p.CurrentHealth, 0, p.MaxHealth)
	p.MaxShield = max(p.MaxShield, 0)
	p.CurrentShield = clamp(p.CurrentShield, 0, p.MaxShield)
	p.ShieldDurability = max(p.ShieldDurability, 0)
	p.Barrier = max(p.Barrier, 0)
	return p
}

func (s Summon) with(field string, v int) (Summon, error) {
	v = max(v, 0)
	switch field {
	case FieldCurrentHealth:
		s.CurrentHealth = v
	case FieldMaxHealth:
		s.MaxHealth = v
	case FieldHealthDrain:
		s.HealthDrain = v
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s.normalized(), nil
}

func (s Summon) normalized() Summon {
	s.MaxHealth = max(s.MaxHealth, 0)
	s.CurrentHealth = clamp(s.CurrentHealth, 0, s.MaxHealth)
	s.HealthDrain = max(s.HealthDrain, 0)
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// addSat returns a+b saturated to [math.MinInt, math.MaxInt].
func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// Roster is a copy of both character collections in insertion order.
type Roster struct {
	Players []Player `json:"players"`
	Summons []Summon `json:"summons"`
}

// Player returns the player named name.
func (r Roster) Player(name string) (Player, bool) {
	for _, p := range r.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// Summon returns the summon named name.
func (r Roster) Summon(name string) (Summon, bool) {
	for _, s := range r.Summons {
		if s.Name == name {
			return s, true
		}
	}
	return Summon{}, false
}
