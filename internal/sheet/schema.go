// Package sheet imports and keeps character sheets, and feeds their stats
// and runes into the damage calculator and the health tracker.
package sheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// Sheet is a validated JSON character sheet.
type Sheet struct {
	Info  Info  `json:"info"`
	Runes Runes `json:"runes"`
}

// Info holds the character identity, stats and extras.
type Info struct {
	Name      string                `json:"name"`
	ShortName string                `json:"shortName"`
	Version   float64               `json:"version"`
	Stats     Stats                 `json:"stats"`
	MoreInfo  map[string][]string   `json:"moreInfo"`
	Summons   map[string]SummonInfo `json:"summons"`
}

// Stats are the numbers fed into the engines.
type Stats struct {
	Movement   float64 `json:"movement"`
	Health     float64 `json:"health"`
	Power      float64 `json:"power"`
	BasicRange float64 `json:"basicRange"`
	CritChance float64 `json:"critChance"`
	// Shield is [amount, durability].
	Shield [2]float64 `json:"shield"`
}

// SummonInfo describes a summon the character can call.
type SummonInfo struct {
	Cost     *float64       `json:"cost,omitempty"`
	Health   [2]float64     `json:"health"`
	Speed    string         `json:"speed"`
	Power    float64        `json:"power"`
	Movement float64        `json:"movement"`
	Passive  []string       `json:"passive"`
	Active   []SummonAction `json:"active"`
}

// SummonAction is one active ability of a summon.
type SummonAction struct {
	Damage   *[2]float64 `json:"damage,omitempty"`
	Accuracy *float64    `json:"accuracy,omitempty"`
	Effect   string      `json:"effect"`
}

// Runes holds the character's passive, primary and secondary runes.
type Runes struct {
	Passive   []string                 `json:"passive"`
	Primary   map[string]PrimaryRune   `json:"primary"`
	Secondary map[string]SecondaryRune `json:"secondary"`
}

// PrimaryRune is an attack or ability rune.
type PrimaryRune struct {
	// Damage is [flat, scaling%].
	Damage          *[2]float64     `json:"damage,omitempty"`
	DamageDisplay   string          `json:"damageDisplay,omitempty"`
	Heal            *[2]float64     `json:"heal,omitempty"`
	Healing         bool            `json:"healing,omitempty"`
	Accuracy        *float64        `json:"accuracy,omitempty"`
	AccuracyDisplay string          `json:"accuracyDisplay,omitempty"`
	Speed           float64         `json:"speed"`
	Range           *NumberOrString `json:"range,omitempty"`
	AoE             *float64        `json:"AoE,omitempty"`
	Duration        string          `json:"duration,omitempty"`
	Effect          string          `json:"effect"`
	Resolve         Resolve         `json:"resolve"`
	Bonus           *Bonus          `json:"bonus,omitempty"`
}

// SecondaryRune is a supporting rune.
type SecondaryRune struct {
	Damage   *float64 `json:"damage,omitempty"`
	Duration string   `json:"duration,omitempty"`
	Effect   string   `json:"effect"`
}

// NumberOrString holds a JSON value that is either a number or a string.
type NumberOrString struct {
	Number *float64
	Text   string
}

// String renders the value for display.
func (v NumberOrString) String() string {
	if v.Number != nil {
		return formatNumber(*v.Number)
	}
	return v.Text
}

// MarshalJSON implements json.Marshaler.
func (v NumberOrString) MarshalJSON() ([]byte, error) {
	if v.Number != nil {
		return json.Marshal(*v.Number)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *NumberOrString) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = NumberOrString{Number: &n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected a number or a string")
	}
	*v = NumberOrString{Text: s}
	return nil
}

var percentPattern = regexp.MustCompile(`^\d+(?:\.\d+)?%$`)

// Resolve is the [amount, cost] pair of a rune. The amount is a number or a
// percentage string such as "15%".
type Resolve struct {
	Amount NumberOrString
	Cost   float64
}

// MarshalJSON implements json.Marshaler.
func (r Resolve) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Amount, r.Cost})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Resolve) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("expected [number | percentage, number]")
	}
	var out Resolve
	if err := out.Amount.UnmarshalJSON(pair[0]); err != nil {
		return err
	}
	if out.Amount.Number == nil && !percentPattern.MatchString(out.Amount.Text) {
		return fmt.Errorf("resolve amount %q is not a percentage", out.Amount.Text)
	}
	if err := json.Unmarshal(pair[1], &out.Cost); err != nil {
		return fmt.Errorf("resolve cost must be a number")
	}
	*r = out
	return nil
}

// Bonus is the [amount, description] pair of a rune.
type Bonus struct {
	Amount      float64
	Description string
}

// MarshalJSON implements json.Marshaler.
func (b Bonus) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Amount, b.Description})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bonus) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("expected [number, string]")
	}
	var out Bonus
	if err := json.Unmarshal(pair[0], &out.Amount); err != nil {
		return fmt.Errorf("bonus amount must be a number")
	}
	if err := json.Unmarshal(pair[1], &out.Description); err != nil {
		return fmt.Errorf("bonus description must be a string")
	}
	*b = out
	return nil
}

// PrimaryNames returns the primary rune names in sorted order.
func (s Sheet) PrimaryNames() []string {
	names := make([]string, 0, len(s.Runes.Primary))
	for n := range s.Runes.Primary {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// decodeSheet decodes an already validated document.
func decodeSheet(data []byte) (Sheet, error) {
	var s Sheet
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return Sheet{}, err
	}
	return s, nil
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%g", f)
}
