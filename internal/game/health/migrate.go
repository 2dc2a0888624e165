package health

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RosterVersion is the version of the persisted roster shape.
const RosterVersion = 1

// MigrateRoster upgrades a persisted roster to RosterVersion.
//
// Version 0 is the keyed-object shape: players and summons are objects from
// name to record, and in the oldest files a player is only a
// [currentHealth, maxHealth] pair. Names are ordered alphabetically because
// the keyed shape does not keep insertion order.
func MigrateRoster(from int, raw json.RawMessage) (json.RawMessage, error) {
	if from != 0 {
		return nil, fmt.Errorf("no roster migration from version %d", from)
	}
	var old struct {
		Players map[string]json.RawMessage `json:"players"`
		Summons map[string]Summon          `json:"summons"`
	}
	if err := json.Unmarshal(raw, &old); err != nil {
		return nil, fmt.Errorf("decoding version 0 roster: %w", err)
	}

	var r Roster
	for _, name := range sortedKeys(old.Players) {
		p, err := legacyPlayer(name, old.Players[name])
		if err != nil {
			return nil, err
		}
		r.Players = append(r.Players, p)
	}
	for _, name := range sortedKeys(old.Summons) {
		s := old.Summons[name]
		s.Name = name
		r.Summons = append(r.Summons, s.normalized())
	}
	return json.Marshal(r)
}

func legacyPlayer(name string, raw json.RawMessage) (Player, error) {
	var pair []int
	if err := json.Unmarshal(raw, &pair); err == nil {
		if len(pair) != 2 {
			return Player{}, fmt.Errorf("player %q: health pair has %d values", name, len(pair))
		}
		return Player{Name: name, CurrentHealth: pair[0], MaxHealth: pair[1]}.normalized(), nil
	}
	var p Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return Player{}, fmt.Errorf("player %q: %w", name, err)
	}
	p.Name = name
	return p.normalized(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
