// Package sqlite provides the local SQLite key-value store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitedriver "github.com/golang-migrate/migrate/v4/database/sqlite"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/rotz-assistant/internal/storage/migrations"
)

// Store is a storage.KV saved to a single SQLite file.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the SQLite file at path, creating it when missing, and applies
// every pending migration.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a migrated Store or a non-nil error.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer avoids SQLITE_BUSY between the autosave and the dashboard.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	m, err := s.Migrator()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrations.Run(m, "up", 0); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("sqlite storage opened", zap.String("path", path))
	return s, nil
}

// DSN returns the modernc connection string for path.
func DSN(path string) string {
	return "file:" + filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrator returns a golang-migrate instance bound to the store's database.
// Closing the returned Migrate closes the store.
func (s *Store) Migrator() (*migrate.Migrate, error) {
	src, err := migrations.Source(migrations.DialectSQLite)
	if err != nil {
		return nil, err
	}
	drv, err := sqlitedriver.WithInstance(s.db, &sqlitedriver.Config{})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("creating sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// Get implements storage.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	s.logger.Debug("kv saved", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete implements storage.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys implements storage.KV.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv_entries WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close implements storage.KV.
func (s *Store) Close() error {
	return s.db.Close()
}
