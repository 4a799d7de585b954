package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// SQLite backed KVStore. This is the default local store: a single file
// that survives restarts of the station.
type SqliteKVStore struct {
	DB  *sql.DB
	Log logrus.FieldLogger
}

func NewSqliteKVStore(db *sql.DB, log logrus.FieldLogger) *SqliteKVStore {
	return &SqliteKVStore{DB: db, Log: log}
}

func (s *SqliteKVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, s.Log, "sqlite.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite kv store: DB is nil")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv %q: query kv table: %w", key, err)
	}

	return []byte(value), nil
}

func (s *SqliteKVStore) Put(ctx context.Context, key string, value []byte) (err error) {
	defer obs.Time(ctx, s.Log, "sqlite.Put")(&err)

	if s.DB == nil {
		return errors.New("sqlite kv store: DB is nil")
	}

	query := `
	INSERT OR REPLACE INTO kv (
		key,
		value,
		updated_at
	)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.DB.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}

	return nil
}

func (s *SqliteKVStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, s.Log, "sqlite.Delete")(&err)

	if s.DB == nil {
		return errors.New("sqlite kv store: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}

	return nil
}

func (s *SqliteKVStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
