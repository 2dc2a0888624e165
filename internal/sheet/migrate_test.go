package sheet_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/sheet"
)

func TestMigrateCollection(t *testing.T) {
	raw := map[string]any{
		"characterSheet": map[string]any{
			"Aria::1700000002000": map[string]any{"type": "json", "json": json.RawMessage(validSheet(t))},
			"Brom::1700000001000": map[string]any{"type": "markdown", "markdown": "# Brom"},
			"Old::1600000000000":  "# Old markdown without a type",
			"Broken::1700000003000": map[string]any{
				"type": "json",
				"json": map[string]any{"info": map[string]any{}},
			},
			"Odd::1700000004000": map[string]any{"type": "pdf"},
		},
		"activeCharacter": "Aria::1700000002000",
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	out, err := sheet.MigrateCollection(0, data)
	require.NoError(t, err)
	var c sheet.Collection
	require.NoError(t, json.Unmarshal(out, &c))

	require.Len(t, c.Sheets, 2)
	brom, aria := c.Sheets[0], c.Sheets[1]
	assert.Equal(t, "Brom", brom.Name)
	assert.Equal(t, sheet.FormatMarkdown, brom.Format)
	assert.Equal(t, "# Brom", brom.Markdown)
	assert.Equal(t, time.UnixMilli(1700000001000).UTC(), brom.AddedAt)

	assert.Equal(t, "Aria", aria.Name)
	require.NotNil(t, aria.JSON)
	assert.Equal(t, "Aria Stormcaller", aria.JSON.Info.Name)
	assert.Equal(t, sheet.LegacyID("Aria::1700000002000"), aria.ID)
	assert.Equal(t, aria.ID, c.Active)
}

func TestMigrateCollection_StableIDs(t *testing.T) {
	data := []byte(`{"characterSheet":{"Brom":{"type":"markdown","markdown":"# Brom"}},"activeCharacter":""}`)
	first, err := sheet.MigrateCollection(0, data)
	require.NoError(t, err)
	second, err := sheet.MigrateCollection(0, data)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	var c sheet.Collection
	require.NoError(t, json.Unmarshal(first, &c))
	require.Len(t, c.Sheets, 1)
	assert.Equal(t, "Brom", c.Sheets[0].Name, "a key without a timestamp keeps its whole name")
	assert.True(t, c.Sheets[0].AddedAt.IsZero())
}

func TestMigrateCollection_Empty(t *testing.T) {
	out, err := sheet.MigrateCollection(0, []byte(`{}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sheets":[],"activeId":"00000000-0000-0000-0000-000000000000"}`, string(out))
}

func TestMigrateCollection_Rejects(t *testing.T) {
	_, err := sheet.MigrateCollection(1, []byte(`{}`))
	assert.Error(t, err)
	_, err = sheet.MigrateCollection(0, []byte(`[]`))
	assert.Error(t, err)
}
