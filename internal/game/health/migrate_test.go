package health_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/game/health"
)

func migrate(t *testing.T, raw string) health.Roster {
	t.Helper()
	out, err := health.MigrateRoster(0, json.RawMessage(raw))
	require.NoError(t, err)
	var r health.Roster
	require.NoError(t, json.Unmarshal(out, &r))
	return r
}

func TestMigrateRoster_HealthPairs(t *testing.T) {
	r := migrate(t, `{"players":{"Zed":[5,10],"Ava":[12,8]}}`)
	require.Len(t, r.Players, 2)
	assert.Equal(t, health.Player{Name: "Ava", CurrentHealth: 8, MaxHealth: 8}, r.Players[0])
	assert.Equal(t, health.Player{Name: "Zed", CurrentHealth: 5, MaxHealth: 10}, r.Players[1])
	assert.Empty(t, r.Summons)
}

func TestMigrateRoster_KeyedRecords(t *testing.T) {
	r := migrate(t, `{
		"players":{"Ava":{"shieldDurability":2,"currentShield":3,"maxShield":4,"currentHealth":20,"maxHealth":30,"barrier":1}},
		"summons":{"Imp":{"currentHealth":9,"maxHealth":10,"healthDrain":2}}
	}`)
	assert.Equal(t, []health.Player{{Name: "Ava", CurrentHealth: 20, MaxHealth: 30, CurrentShield: 3, MaxShield: 4, ShieldDurability: 2, Barrier: 1}}, r.Players)
	assert.Equal(t, []health.Summon{{Name: "Imp", CurrentHealth: 9, MaxHealth: 10, HealthDrain: 2}}, r.Summons)
}

func TestMigrateRoster_Rejects(t *testing.T) {
	_, err := health.MigrateRoster(1, json.RawMessage(`{}`))
	assert.Error(t, err)
	_, err = health.MigrateRoster(0, json.RawMessage(`{"players":{"A":[1,2,3]}}`))
	assert.Error(t, err)
	_, err = health.MigrateRoster(0, json.RawMessage(`{"players":{"A":"full"}}`))
	assert.Error(t, err)
}
