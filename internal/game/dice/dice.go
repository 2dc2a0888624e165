// Package dice provides the randomness abstraction shared by the damage
// rulesets and the dashboard's random helpers.
package dice

import "math"

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Range returns a uniformly distributed integer in [lo, hi] using the
// floor(rand*(hi-lo+1)+lo) rule. Bounds given in reverse order are swapped.
// Spans wider than an int are drawn from Float64 at float precision.
//
// Postcondition: lo <= result <= hi.
func Range(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := uint64(hi) - uint64(lo)
	if span < math.MaxInt {
		return lo + src.Intn(int(span)+1)
	}
	return int(uint64(lo) + uint64(src.Float64()*float64(span)))
}

// Percent reports whether a percentage check succeeds: round(rand*100) <= pct.
// A pct of 100 or more always succeeds.
func Percent(src Source, pct int) bool {
	roll := int(src.Float64()*100 + 0.5)
	return roll <= pct
}
