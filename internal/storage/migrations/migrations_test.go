package migrations_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rotz-assistant/internal/storage/migrations"
)

func versions(t *testing.T, dialect string) []uint {
	t.Helper()
	src, err := migrations.Source(dialect)
	require.NoError(t, err)
	defer src.Close()

	v, err := src.First()
	require.NoError(t, err)
	out := []uint{v}
	for {
		next, err := src.Next(v)
		if err != nil {
			require.ErrorIs(t, err, os.ErrNotExist)
			return out
		}
		out = append(out, next)
		v = next
	}
}

func TestDialectsShareVersions(t *testing.T) {
	sqlite := versions(t, migrations.DialectSQLite)
	postgres := versions(t, migrations.DialectPostgres)
	assert.Equal(t, sqlite, postgres)
	assert.Equal(t, uint(1), sqlite[0])
}

func TestEveryUpHasADown(t *testing.T) {
	for _, dialect := range []string{migrations.DialectSQLite, migrations.DialectPostgres} {
		src, err := migrations.Source(dialect)
		require.NoError(t, err)
		for _, v := range versions(t, dialect) {
			r, _, err := src.ReadDown(v)
			require.NoError(t, err, "%s version %d has no down migration", dialect, v)
			_ = r.Close()
		}
		_ = src.Close()
	}
}

func TestSource_UnknownDialect(t *testing.T) {
	_, err := migrations.Source("oracle")
	assert.Error(t, err)
}
