// Package storagetest holds the behaviour every storage.KV backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/storage"
)

// RunKV exercises a fresh KV returned by open.
func RunKV(t *testing.T, open func(t *testing.T) storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		kv := open(t)
		v, ok, err := kv.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("put get overwrite", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Put(ctx, "rotz-assistant-notes-store", []byte(`{"version":1}`)))
		require.NoError(t, kv.Put(ctx, "rotz-assistant-notes-store", []byte(`{"version":2}`)))
		v, ok, err := kv.Get(ctx, "rotz-assistant-notes-store")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `{"version":2}`, string(v))
	})

	t.Run("empty value", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Put(ctx, "k", []byte{}))
		v, ok, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("delete", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Put(ctx, "k", []byte("v")))
		require.NoError(t, kv.Delete(ctx, "k"))
		require.NoError(t, kv.Delete(ctx, "k"), "deleting a missing key is not an error")
		_, ok, err := kv.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		kv := open(t)
		for _, k := range []string{"rotz-b", "other", "rotz-a", "rotz-c"} {
			require.NoError(t, kv.Put(ctx, k, []byte(k)))
		}
		keys, err := kv.Keys(ctx, "rotz-")
		require.NoError(t, err)
		assert.Equal(t, []string{"rotz-a", "rotz-b", "rotz-c"}, keys)
	})

	t.Run("closed", func(t *testing.T) {
		kv := open(t)
		require.NoError(t, kv.Close())
		_, _, err := kv.Get(ctx, "k")
		assert.Error(t, err)
		assert.Error(t, kv.Put(ctx, "k", []byte("v")))
	})
}
