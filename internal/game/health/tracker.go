package health

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// DamageSource supplies the amount applied by damage and healing commands.
// The damage engine satisfies it: the manual hit override when set, else the
// total of the latest roll.
type DamageSource interface {
	Hit() int
}

// Tracker owns the player and summon rosters.
//
// All methods are safe for concurrent use. Every mutation either completes
// or leaves the rosters untouched.
type Tracker struct {
	mu      sync.RWMutex
	damage  DamageSource
	logger  *zap.Logger
	players *roster[Player]
	summons *roster[Summon]

	// Injected after construction. nil = no-op.
	OnChange func(Roster)
}

// NewTracker creates an empty Tracker that reads damage from src.
//
// Precondition: src and logger must be non-nil.
func NewTracker(src DamageSource, logger *zap.Logger) *Tracker {
	return &Tracker{
		damage:  src,
		logger:  logger,
		players: newRoster[Player](),
		summons: newRoster[Summon](),
	}
}

// AddPlayer adds a player at full health with a full shield and no barrier.
// Re-adding an existing name overwrites it in place.
//
// Precondition: name must be non-empty.
// Postcondition: CurrentHealth == MaxHealth == maxHealth; CurrentShield ==
// MaxShield == shieldAmount; Barrier == 0. Negative inputs are stored as 0.
func (t *Tracker) AddPlayer(name string, shieldAmount, shieldDurability, maxHealth int) error {
	if name == "" {
		return ErrEmptyName
	}
	p := Player{
		Name:             name,
		CurrentHealth:    maxHealth,
		MaxHealth:        maxHealth,
		CurrentShield:    shieldAmount,
		MaxShield:        shieldAmount,
		ShieldDurability: shieldDurability,
	}.normalized()
	var replaced bool
	t.mutate(func() error {
		replaced = t.players.put(name, p)
		return nil
	})
	t.logAdd(KindPlayer, name, replaced)
	return nil
}

// AddSummon adds a summon at full health.
// Re-adding an existing name overwrites it in place.
//
// Precondition: name must be non-empty.
// Postcondition: CurrentHealth == MaxHealth == maxHealth.
func (t *Tracker) AddSummon(name string, maxHealth, healthDrain int) error {
	if name == "" {
		return ErrEmptyName
	}
	s := Summon{
		Name:          name,
		CurrentHealth: maxHealth,
		MaxHealth:     maxHealth,
		HealthDrain:   healthDrain,
	}.normalized()
	var replaced bool
	t.mutate(func() error {
		replaced = t.summons.put(name, s)
		return nil
	})
	t.logAdd(KindSummon, name, replaced)
	return nil
}

func (t *Tracker) logAdd(kind Kind, name string, replaced bool) {
	if replaced {
		t.logger.Info("character overwritten", zap.String("kind", string(kind)), zap.String("name", name))
		return
	}
	t.logger.Info("character added", zap.String("kind", string(kind)), zap.String("name", name))
}

// RemoveCharacter deletes name from the kind roster.
//
// Postcondition: Returns ErrCharacterNotFound if absent.
func (t *Tracker) RemoveCharacter(name string, kind Kind) error {
	err := t.mutate(func() error {
		var ok bool
		switch kind {
		case KindPlayer:
			ok = t.players.remove(name)
		case KindSummon:
			ok = t.summons.remove(name)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
		}
		if !ok {
			return notFound(kind, name)
		}
		return nil
	})
	if err == nil {
		t.logger.Info("character removed", zap.String("kind", string(kind)), zap.String("name", name))
	}
	return err
}

// UpdateCurrentHealth heals (add) or damages (remove) name by the current hit.
//
// Postcondition: 0 <= CurrentHealth <= MaxHealth.
func (t *Tracker) UpdateCurrentHealth(name string, dir Direction, kind Kind) error {
	hit := t.hit()
	delta, err := signed(dir, hit)
	if err != nil {
		return err
	}
	switch kind {
	case KindPlayer:
		return t.updatePlayer(name, func(p Player) Player {
			p.CurrentHealth = clamp(addSat(p.CurrentHealth, delta), 0, p.MaxHealth)
			return p
		})
	case KindSummon:
		return t.updateSummon(name, func(s Summon) Summon {
			s.CurrentHealth = clamp(addSat(s.CurrentHealth, delta), 0, s.MaxHealth)
			return s
		})
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// UpdatePlayerBarrier raises (add) or damages (remove) the barrier of name.
// Damage beyond the barrier is taken from the shield.
//
// Postcondition: Barrier >= 0; CurrentShield >= 0.
func (t *Tracker) UpdatePlayerBarrier(name string, dir Direction) error {
	delta, err := signed(dir, t.hit())
	if err != nil {
		return err
	}
	return t.updatePlayer(name, func(p Player) Player {
		b := addSat(p.Barrier, delta)
		if b < 0 {
			p.CurrentShield = max(addSat(p.CurrentShield, b), 0)
			b = 0
		}
		p.Barrier = b
		return p
	})
}

// DamageShield takes the current hit from the shield of name.
//
// Postcondition: CurrentShield >= 0.
func (t *Tracker) DamageShield(name string) error {
	hit := t.hit()
	return t.updatePlayer(name, func(p Player) Player {
		p.CurrentShield = max(p.CurrentShield-hit, 0)
		return p
	})
}

// ResetPlayerShield refills the shield of name.
//
// Postcondition: CurrentShield == MaxShield.
func (t *Tracker) ResetPlayerShield(name string) error {
	return t.updatePlayer(name, func(p Player) Player {
		p.CurrentShield = p.MaxShield
		return p
	})
}

// SummonHealthDrain permanently lowers the max health of name by its drain.
//
// Postcondition: MaxHealth never increases; CurrentHealth <= MaxHealth.
func (t *Tracker) SummonHealthDrain(name string) error {
	return t.updateSummon(name, func(s Summon) Summon {
		s.MaxHealth = max(s.MaxHealth-s.HealthDrain, 0)
		s.CurrentHealth = min(s.CurrentHealth, s.MaxHealth)
		return s
	})
}

// SetPlayerField overwrites one field of name. Negative values are stored as
// 0 and health and shield are clamped to their maximums afterwards.
func (t *Tracker) SetPlayerField(name, field string, value int) error {
	return t.editPlayer(name, func(p Player) (Player, error) {
		return p.with(field, value)
	})
}

// SetSummonField overwrites one field of name with the same clamping as
// SetPlayerField.
func (t *Tracker) SetSummonField(name, field string, value int) error {
	return t.editSummon(name, func(s Summon) (Summon, error) {
		return s.with(field, value)
	})
}

// Snapshot returns a copy of both rosters.
func (t *Tracker) Snapshot() Roster {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

// Restore replaces both rosters with r. Entries without a name are skipped
// and every entry is normalized; a repeated name keeps the last entry.
func (t *Tracker) Restore(r Roster) {
	players := newRoster[Player]()
	for _, p := range r.Players {
		if p.Name != "" {
			players.put(p.Name, p.normalized())
		}
	}
	summons := newRoster[Summon]()
	for _, s := range r.Summons {
		if s.Name != "" {
			summons.put(s.Name, s.normalized())
		}
	}
	np, ns := players.len(), summons.len()
	t.mutate(func() error {
		t.players = players
		t.summons = summons
		return nil
	})
	t.logger.Debug("roster restored", zap.Int("players", np), zap.Int("summons", ns))
}

// Len returns the number of players and summons.
func (t *Tracker) Len() (players, summons int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.players.len(), t.summons.len()
}

func (t *Tracker) hit() int {
	if t.damage == nil {
		return 0
	}
	return max(t.damage.Hit(), 0)
}

func (t *Tracker) updatePlayer(name string, fn func(Player) Player) error {
	return t.editPlayer(name, func(p Player) (Player, error) { return fn(p), nil })
}

func (t *Tracker) updateSummon(name string, fn func(Summon) Summon) error {
	return t.editSummon(name, func(s Summon) (Summon, error) { return fn(s), nil })
}

func (t *Tracker) editPlayer(name string, fn func(Player) (Player, error)) error {
	return t.mutate(func() error {
		p, ok := t.players.get(name)
		if !ok {
			return notFound(KindPlayer, name)
		}
		np, err := fn(p)
		if err != nil {
			return err
		}
		t.players.put(name, np)
		return nil
	})
}

func (t *Tracker) editSummon(name string, fn func(Summon) (Summon, error)) error {
	return t.mutate(func() error {
		s, ok := t.summons.get(name)
		if !ok {
			return notFound(KindSummon, name)
		}
		ns, err := fn(s)
		if err != nil {
			return err
		}
		t.summons.put(name, ns)
		return nil
	})
}

// mutate runs fn under the write lock and notifies OnChange when fn succeeds.
func (t *Tracker) mutate(fn func() error) error {
	t.mu.Lock()
	if err := fn(); err != nil {
		t.mu.Unlock()
		return err
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	if t.OnChange != nil {
		t.OnChange(snap)
	}
	return nil
}

func (t *Tracker) snapshotLocked() Roster {
	return Roster{Players: t.players.list(), Summons: t.summons.list()}
}

func signed(dir Direction, amount int) (int, error) {
	switch dir {
	case DirectionAdd:
		return amount, nil
	case DirectionRemove:
		return -amount, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
}

func notFound(kind Kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, ErrCharacterNotFound)
}
