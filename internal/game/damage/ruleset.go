package damage

import (
	"fmt"
	"math"
	"sort"

	"github.com/cory-johannsen/rotz-assistant/internal/game/dice"
)

// Ruleset names accepted by RulesetByName and the damage.ruleset setting.
const (
	RulesetAccuracy = "accuracy"
	RulesetMaxHit   = "maxhit"
	RulesetScript   = "script"
)

// Ruleset computes one roll from an attack configuration.
//
// Implementations must not retain cfg or mutate shared state; a returned
// error means no roll happened.
type Ruleset interface {
	// Name returns the ruleset identifier recorded on every Result.
	Name() string
	// Roll computes a Result from cfg using src.
	Roll(cfg Config, src dice.Source) (Result, error)
}

// RulesetByName returns the built-in ruleset registered under name.
// The script ruleset needs a loaded script and is built by the scripting
// package instead.
//
// Postcondition: Returns a non-nil Ruleset or an error for unknown names.
func RulesetByName(name string) (Ruleset, error) {
	switch name {
	case RulesetAccuracy, "":
		return AccuracyRuleset{}, nil
	case RulesetMaxHit:
		return MaxHitRuleset{}, nil
	}
	return nil, fmt.Errorf("unknown ruleset %q", name)
}

// AccuracyRuleset is the canonical rune-accuracy damage model: the max hit
// is split into accuracy-many dice and every die is floored at a minimum
// damage that grows with accuracy.
type AccuracyRuleset struct{}

// Name implements Ruleset.
func (AccuracyRuleset) Name() string { return RulesetAccuracy }

// Roll implements Ruleset.
//
// Precondition: cfg.RuneAccuracy > 0, else ErrZeroAccuracy.
// Postcondition: len(Rolls) >= 1; 0 <= TotalDamage <= MaxTotalDamage; MinimumDamage == 0 and
// Critical == false when confused; every roll equals max(1, DiceSides) when perfect.
func (AccuracyRuleset) Roll(cfg Config, src dice.Source) (Result, error) {
	cfg = cfg.Sanitized()
	acc := cfg.RuneAccuracy
	if acc <= 0 {
		return Result{}, ErrZeroAccuracy
	}
	mods := cfg.Modifiers

	crit := false
	if !mods.Confused {
		crit = src.Intn(100) < cfg.CritChance
	}

	maxHit := cfg.MaxHit()
	sides := maxHit / acc

	minDamage := 0.0
	if !mods.Confused {
		minDamage = math.Floor(sides * math.Min(acc*5, 100) / 100)
	}

	count := int(math.Floor(math.Min(maxHit, acc)))
	if crit {
		count *= 2
	}
	count = max(1, min(count, MaxDice))

	rolls := make([]float64, count)
	for i := range rolls {
		if mods.Perfect {
			rolls[i] = math.Max(1, sides)
			continue
		}
		rolls[i] = math.Max(1, math.Round(src.Float64()*sides))
	}

	sum := 0.0
	for _, r := range rolls {
		sum += math.Max(r, minDamage)
	}
	total := math.Round(sum)
	if mods.Encouraged {
		total += math.Round(acc * minDamage)
	}

	return Result{
		Critical:      crit,
		DiceSides:     sides,
		MinimumDamage: minDamage,
		Rolls:         rolls,
		TotalDamage:   TotalDamageOf(total),
		Ruleset:       RulesetAccuracy,
	}, nil
}

// MaxHitRuleset is the legacy model: two dice up to the max value, one fewer
// when dodging and one more when encouraged. A crit sums the two best dice.
type MaxHitRuleset struct{}

// Name implements Ruleset.
func (MaxHitRuleset) Name() string { return RulesetMaxHit }

// Roll implements Ruleset.
//
// Precondition: cfg.MaxValue > 0, else ErrZeroMaxValue.
// Postcondition: 1 <= len(Rolls) <= 3; 0 <= TotalDamage <= 2*MaxValue.
func (MaxHitRuleset) Roll(cfg Config, src dice.Source) (Result, error) {
	cfg = cfg.Sanitized()
	if cfg.MaxValue <= 0 {
		return Result{}, ErrZeroMaxValue
	}
	mods := cfg.Modifiers

	crit := src.Intn(100) < cfg.CritChance

	count := 2
	if mods.Dodge {
		count--
	}
	if mods.Encouraged {
		count++
	}

	rolls := make([]float64, count)
	for i := range rolls {
		rolls[i] = math.Round(src.Float64() * cfg.MaxValue)
	}

	return Result{
		Critical:    crit,
		DiceSides:   cfg.MaxValue,
		Rolls:       rolls,
		TotalDamage: TotalDamageOf(maxHitDamage(rolls, crit, mods.Confused)),
		Ruleset:     RulesetMaxHit,
	}, nil
}

func maxHitDamage(rolls []float64, crit, confused bool) float64 {
	if len(rolls) == 1 {
		return rolls[0]
	}
	sorted := append([]float64(nil), rolls...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if !crit {
		if confused {
			return sorted[len(sorted)-1]
		}
		return sorted[0]
	}
	if confused {
		return sorted[len(sorted)-1] + sorted[len(sorted)-2]
	}
	return sorted[0] + sorted[1]
}
