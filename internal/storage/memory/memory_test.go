package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/storage"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/memory"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/storagetest"
)

func TestStore_KV(t *testing.T) {
	storagetest.RunKV(t, func(*testing.T) storage.KV { return memory.New() })
}

func TestStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	v := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", v))
	v[0] = 'x'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'

	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStore_ClosedIsErrClosed(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Close())
	_, err := s.Keys(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrClosed)
}
