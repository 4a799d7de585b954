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

// SQLKVStore is a Postgres-backed KVStore for stations that share a database
// server instead of keeping a local file.
type SQLKVStore struct {
	DB  *sql.DB
	Log logrus.FieldLogger
}

func NewSQLKVStore(db *sql.DB, log logrus.FieldLogger) *SQLKVStore {
	return &SQLKVStore{DB: db, Log: log}
}

func (s *SQLKVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, s.Log, "postgres.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql kv store: db is nil")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv %q: query kv table: %w", key, err)
	}

	return []byte(value), nil
}

func (s *SQLKVStore) Put(ctx context.Context, key string, value []byte) (err error) {
	defer obs.Time(ctx, s.Log, "postgres.Put")(&err)

	if s.DB == nil {
		return errors.New("sql kv store: db is nil")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO kv (key, value, updated_at)
	VALUES ($1, $2, CURRENT_TIMESTAMP)
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}

	return nil
}

func (s *SQLKVStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, s.Log, "postgres.Delete")(&err)

	if s.DB == nil {
		return errors.New("sql kv store: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}

	return nil
}

func (s *SQLKVStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
