package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger. Every draw is logged at debug level, so a
// Roller can be handed to any consumer that expects a Source.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the wrapped Source and logs the value.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice draw", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Float64 draws from the wrapped Source and logs the value.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice draw", zap.Float64("value", v))
	return v
}

// Range rolls an inclusive integer range and logs the outcome.
//
// Postcondition: min(lo, hi) <= result <= max(lo, hi).
func (r *Roller) Range(lo, hi int) int {
	v := Range(r.src, lo, hi)
	r.logger.Debug("range roll", zap.Int("lo", lo), zap.Int("hi", hi), zap.Int("result", v))
	return v
}

// Percent performs a percentage check and logs the outcome.
func (r *Roller) Percent(pct int) bool {
	ok := Percent(r.src, pct)
	r.logger.Debug("percent roll", zap.Int("pct", pct), zap.Bool("success", ok))
	return ok
}
