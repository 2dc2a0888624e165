package persist_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rotz-assistant/internal/persist"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/memory"
)

type counter struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func counterCodec() persist.Codec[counter] {
	return persist.Codec[counter]{
		Key:     "test-store",
		Version: 2,
		Migrate: func(from int, raw json.RawMessage) (json.RawMessage, error) {
			if from != 1 {
				return nil, errors.New("only version 1 migrates")
			}
			var old struct {
				Label string `json:"label"`
			}
			if err := json.Unmarshal(raw, &old); err != nil {
				return nil, err
			}
			return json.Marshal(counter{Name: old.Label})
		},
	}
}

func TestCodec_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	c := counterCodec()

	require.NoError(t, c.Save(ctx, kv, counter{Name: "a", Count: 3}))
	raw, ok, err := kv.Get(ctx, "test-store")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":2,"state":{"name":"a","count":3}}`, string(raw))

	res, err := c.Load(ctx, kv)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Migrated)
	assert.Equal(t, 2, res.FromVersion)
	assert.Equal(t, counter{Name: "a", Count: 3}, res.State)
}

func TestCodec_LoadMissing(t *testing.T) {
	res, err := counterCodec().Load(context.Background(), memory.New())
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, counter{}, res.State)
}

func TestCodec_MigratesOlderEnvelope(t *testing.T) {
	res, err := counterCodec().Decode([]byte(`{"version":1,"state":{"label":"old"}}`))
	require.NoError(t, err)
	assert.True(t, res.Migrated)
	assert.Equal(t, 1, res.FromVersion)
	assert.Equal(t, "old", res.State.Name)
}

func TestCodec_BareStateIsVersionZero(t *testing.T) {
	_, err := counterCodec().Decode([]byte(`{"label":"bare"}`))
	require.Error(t, err, "the test migration rejects version 0")

	c := persist.Codec[counter]{Key: "k", Version: 0}
	res, err := c.Decode([]byte(`{"name":"bare","count":1}`))
	require.NoError(t, err)
	assert.Equal(t, 0, res.FromVersion)
	assert.Equal(t, counter{Name: "bare", Count: 1}, res.State)
}

func TestCodec_Errors(t *testing.T) {
	c := counterCodec()
	_, err := c.Decode([]byte(`{"version":3,"state":{}}`))
	assert.ErrorIs(t, err, persist.ErrNewerVersion)

	_, err = c.Decode([]byte(`not json`))
	assert.Error(t, err)

	noMigrate := persist.Codec[counter]{Key: "k", Version: 1}
	_, err = noMigrate.Decode([]byte(`{"version":0,"state":{}}`))
	assert.Error(t, err)
}

func TestProperty_Codec_RoundTrip(t *testing.T) {
	c := counterCodec()
	rapid.Check(t, func(rt *rapid.T) {
		want := counter{
			Name:  rapid.String().Draw(rt, "name"),
			Count: rapid.Int().Draw(rt, "count"),
		}
		data, err := c.Encode(want)
		require.NoError(rt, err)
		res, err := c.Decode(data)
		require.NoError(rt, err)
		assert.Equal(rt, want, res.State)
	})
}
