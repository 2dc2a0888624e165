package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotz-assistant/internal/config"
	"github.com/cory-johannsen/rotz-assistant/internal/storage/migrations"
)

// Store is a storage.KV kept in the kv_entries table.
type Store struct {
	pool   *Pool
	logger *zap.Logger
}

// NewStore wraps an open pool. The schema must already be migrated.
//
// Precondition: pool and logger must be non-nil.
func NewStore(pool *Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// Open connects to the database described by cfg, applies pending migrations
// and returns a Store owning the pool.
//
// Postcondition: Returns a migrated Store or a non-nil error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	m, err := NewMigrator(cfg.DSN())
	if err != nil {
		return nil, err
	}
	runErr := migrations.Run(m, "up", 0)
	srcErr, dbErr := m.Close()
	if runErr != nil {
		return nil, fmt.Errorf("run migrations: %w", runErr)
	}
	if err := errors.Join(srcErr, dbErr); err != nil {
		return nil, fmt.Errorf("closing migrator: %w", err)
	}

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("postgres storage opened", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return NewStore(pool, logger), nil
}

// NewMigrator returns a golang-migrate instance for the database at dsn using
// the embedded postgres migrations.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := migrations.Source(migrations.DialectPostgres)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// Get implements storage.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Put implements storage.KV.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.pool.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	s.logger.Debug("kv saved", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete implements storage.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.KV.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.pool.Query(ctx,
		`SELECT key FROM kv_entries WHERE starts_with(key, $1) ORDER BY key COLLATE "C"`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return keys, nil
}

// Ping reports whether the database answers within timeout.
func (s *Store) Ping(ctx context.Context, timeout time.Duration) error {
	return s.pool.Ping(ctx, timeout)
}

// Close implements storage.KV.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
