// Package history records every successful damage roll, newest first.
package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/game/damage"
)

// Attack is one recorded roll.
type Attack struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Config damage.Config `json:"numbers"`
	Result damage.Result `json:"result"`
	Time   time.Time     `json:"time"`
}

// Log is an in-memory, newest-first list of attacks. It implements
// damage.Recorder.
//
// All methods are safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	limit   int
	attacks []Attack
	logger  *zap.Logger

	// Now returns the recorded time. Defaults to time.Now.
	Now func() time.Time
	// Injected after construction. nil = no-op.
	OnChange func([]Attack)
}

// NewLog creates an empty Log keeping at most limit attacks; limit <= 0
// keeps every attack.
func NewLog(limit int, logger *zap.Logger) *Log {
	return &Log{limit: limit, logger: logger, Now: time.Now}
}

// Record implements damage.Recorder.
//
// Postcondition: The new attack is at index 0; the oldest attack is dropped
// when the limit is exceeded.
func (l *Log) Record(name string, cfg damage.Config, res damage.Result) {
	a := Attack{
		ID:     uuid.New(),
		Name:   name,
		Config: cfg,
		Result: res.Clone(),
		Time:   l.Now(),
	}
	l.mu.Lock()
	l.attacks = append([]Attack{a}, l.attacks...)
	if l.limit > 0 && len(l.attacks) > l.limit {
		l.attacks = l.attacks[:l.limit]
	}
	snap := l.listLocked()
	l.mu.Unlock()

	l.logger.Debug("attack recorded",
		zap.String("id", a.ID.String()),
		zap.String("attack", name),
		zap.Int("damage", res.TotalDamage),
	)
	if l.OnChange != nil {
		l.OnChange(snap)
	}
}

// Get returns the attack at index, 0 being the most recent.
func (l *Log) Get(index int) (Attack, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.attacks) {
		return Attack{}, fmt.Errorf("history has %d attacks, no index %d", len(l.attacks), index)
	}
	return cloneAttack(l.attacks[index]), nil
}

// List returns a copy of every attack, newest first.
func (l *Log) List() []Attack {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.listLocked()
}

// Len returns the number of recorded attacks.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.attacks)
}

// Reset forgets every attack.
func (l *Log) Reset() {
	l.mu.Lock()
	l.attacks = nil
	l.mu.Unlock()
	if l.OnChange != nil {
		l.OnChange(nil)
	}
}

// Loader receives a recorded attack's name and numbers.
type Loader interface {
	LoadPreset(name string, cfg damage.Config)
}

// Load feeds the attack at index back into target.
func (l *Log) Load(index int, target Loader) (Attack, error) {
	a, err := l.Get(index)
	if err != nil {
		return Attack{}, err
	}
	target.LoadPreset(a.Name, a.Config)
	return a, nil
}

func (l *Log) listLocked() []Attack {
	out := make([]Attack, len(l.attacks))
	for i, a := range l.attacks {
		out[i] = cloneAttack(a)
	}
	return out
}

func cloneAttack(a Attack) Attack {
	a.Result = a.Result.Clone()
	return a
}
