package storage

import (
	"context"
	"errors"
	"fmt"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisKVStore stores station keys in a (local) Redis, namespaced by prefix
// so several stations can share one instance.
type RedisKVStore struct {
	rdb    *redis.Client
	prefix string
	log    logrus.FieldLogger
}

func NewRedisKVStore(opts *redis.Options, prefix string, log logrus.FieldLogger) (*RedisKVStore, error) {
	if opts == nil || opts.Addr == "" {
		return nil, errors.New("redis kv store: address is required")
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis kv store: ping %s: %w", opts.Addr, err)
	}

	return &RedisKVStore{rdb: rdb, prefix: prefix, log: log}, nil
}

func (s *RedisKVStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, s.log, "redis.Get")(&err)

	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv %q: %w", key, err)
	}
	return val, nil
}

func (s *RedisKVStore) Put(ctx context.Context, key string, value []byte) (err error) {
	defer obs.Time(ctx, s.log, "redis.Put")(&err)

	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("put kv %q: %w", key, err)
	}
	return nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) (err error) {
	defer obs.Time(ctx, s.log, "redis.Delete")(&err)

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete kv %q: %w", key, err)
	}
	return nil
}

// Client exposes the underlying connection so the notifier can publish on it.
func (s *RedisKVStore) Client() *redis.Client {
	return s.rdb
}

func (s *RedisKVStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
