package storage

import (
	"context"
	"errors"
	"fmt"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"

	"github.com/cockroachdb/pebble"
	"github.com/sirupsen/logrus"
)

// PebbleKVStore keeps the station state in an embedded Pebble database.
// Every write is synced to the WAL before returning.
type PebbleKVStore struct {
	inner *pebble.DB
	log   logrus.FieldLogger
}

func OpenPebbleKVStore(dir string, log logrus.FieldLogger) (*PebbleKVStore, error) {
	if dir == "" {
		return nil, errors.New("open pebble kv store: directory is required")
	}

	inner, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble kv store %q: %w", dir, err)
	}

	return &PebbleKVStore{inner: inner, log: log}, nil
}

// Get copies the value out of Pebble's buffer before the closer runs.
func (s *PebbleKVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, s.log, "pebble.Get")(&err)

	val, closer, err := s.inner.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv %q: %w", key, err)
	}
	defer closer.Close()

	return append([]byte(nil), val...), nil
}

func (s *PebbleKVStore) Put(ctx context.Context, key string, value []byte) (err error) {
	defer obs.Time(ctx, s.log, "pebble.Put")(&err)

	if err := s.inner.Set([]byte(key), value, pebble.Sync); err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}
	return nil
}

func (s *PebbleKVStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, s.log, "pebble.Delete")(&err)

	if err := s.inner.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}
	return nil
}

func (s *PebbleKVStore) Close() error {
	if s == nil || s.inner == nil {
		return nil
	}
	return s.inner.Close()
}
