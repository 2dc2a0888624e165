// Package persist saves store snapshots to a storage.KV as versioned JSON
// envelopes and migrates older envelopes when they are loaded.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cory-johannsen/rotz-assistant/internal/storage"
)

// ErrNewerVersion is returned when the stored envelope was written by a newer
// version than the codec understands.
var ErrNewerVersion = errors.New("stored state is newer than this build")

// Migration upgrades a state written at version from to the codec's version.
type Migration func(from int, state json.RawMessage) (json.RawMessage, error)

// Codec describes one persisted store.
type Codec[T any] struct {
	// Key is the storage key, e.g. rotz-assistant-health-store.
	Key string
	// Version is stamped on every saved envelope.
	Version int
	// Migrate upgrades envelopes older than Version. nil means older
	// envelopes cannot be read.
	Migrate Migration
}

type envelope struct {
	Version *int            `json:"version"`
	State   json.RawMessage `json:"state"`
}

// LoadResult is the outcome of loading one store.
type LoadResult[T any] struct {
	State T
	// Found is false when nothing was stored under the key.
	Found bool
	// Migrated is true when the stored envelope was older than the codec.
	Migrated bool
	// FromVersion is the version of the stored envelope.
	FromVersion int
}

// Encode wraps state in a versioned envelope.
func (c Codec[T]) Encode(state T) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", c.Key, err)
	}
	v := c.Version
	return json.Marshal(envelope{Version: &v, State: raw})
}

// Decode reads an envelope, migrating it when it is older than the codec.
// Data without an envelope is treated as a bare version 0 state.
//
// Postcondition: On success State holds a value of the current version.
func (c Codec[T]) Decode(data []byte) (LoadResult[T], error) {
	var res LoadResult[T]
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return res, fmt.Errorf("decoding %s envelope: %w", c.Key, err)
	}
	from := 0
	state := env.State
	if env.Version == nil || env.State == nil {
		state = data
	} else {
		from = *env.Version
	}
	res.Found = true
	res.FromVersion = from

	switch {
	case from > c.Version:
		return res, fmt.Errorf("%s version %d: %w", c.Key, from, ErrNewerVersion)
	case from < c.Version:
		if c.Migrate == nil {
			return res, fmt.Errorf("%s version %d cannot be migrated to %d", c.Key, from, c.Version)
		}
		migrated, err := c.Migrate(from, state)
		if err != nil {
			return res, fmt.Errorf("migrating %s from version %d: %w", c.Key, from, err)
		}
		state = migrated
		res.Migrated = true
	}

	dec := json.NewDecoder(bytes.NewReader(state))
	if err := dec.Decode(&res.State); err != nil {
		return res, fmt.Errorf("decoding %s state: %w", c.Key, err)
	}
	return res, nil
}

// Load reads the store from kv. A missing key is not an error.
func (c Codec[T]) Load(ctx context.Context, kv storage.KV) (LoadResult[T], error) {
	data, ok, err := kv.Get(ctx, c.Key)
	if err != nil {
		return LoadResult[T]{}, fmt.Errorf("loading %s: %w", c.Key, err)
	}
	if !ok {
		return LoadResult[T]{}, nil
	}
	return c.Decode(data)
}

// Save writes state to kv.
func (c Codec[T]) Save(ctx context.Context, kv storage.KV, state T) error {
	data, err := c.Encode(state)
	if err != nil {
		return err
	}
	if err := kv.Put(ctx, c.Key, data); err != nil {
		return fmt.Errorf("saving %s: %w", c.Key, err)
	}
	return nil
}
