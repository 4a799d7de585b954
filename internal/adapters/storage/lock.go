package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"pallet-queue-service/internal/ports"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockFileSuffix = ".lock"
	lockRetryDelay = 20 * time.Millisecond

	// RedisLockTTL bounds how long a crashed holder can keep a Redis lock.
	RedisLockTTL = 2 * time.Minute
)

// NewLocker returns the cross-process lock called name for the store opened
// with opts. File backends lock a sibling file, Redis uses a keyed token and
// Postgres an advisory lock. The memory backend only lives in one process.
func NewLocker(opts Options, store ports.KVStore, name string) (ports.Locker, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSqlite:
		if opts.Path == "" || strings.HasPrefix(opts.Path, ":memory:") {
			return NewLocalLock(), nil
		}
		return newFileLocker(opts.Path + "." + name)

	case BackendPebble:
		return newFileLocker(filepath.Clean(opts.PebbleDir) + "." + name)

	case BackendRedis:
		rs, ok := store.(*RedisKVStore)
		if !ok {
			return nil, fmt.Errorf("new locker: backend %q needs a redis store, got %T", opts.Backend, store)
		}
		return NewRedisLock(rs.Client(), rs.key("lock:"+name), RedisLockTTL), nil

	case BackendPostgres:
		ss, ok := store.(*SQLKVStore)
		if !ok {
			return nil, fmt.Errorf("new locker: backend %q needs a sql store, got %T", opts.Backend, store)
		}
		return NewPgAdvisoryLock(ss.DB, name), nil

	case BackendMemory:
		return NewLocalLock(), nil

	default:
		return nil, fmt.Errorf("new locker: unknown backend %q", opts.Backend)
	}
}

func newFileLocker(base string) (ports.Locker, error) {
	l, err := NewFileLock(base)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// FileLock is an flock(2) lock on a file next to the store.
type FileLock struct {
	lock *flock.Flock
	path string
}

func NewFileLock(base string) (*FileLock, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("file lock: resolve %q: %w", base, err)
	}
	path := abs + lockFileSuffix
	return &FileLock{lock: flock.New(path), path: path}, nil
}

func (l *FileLock) Lock(ctx context.Context) error {
	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("acquire lock on %s: %w", l.path, ctx.Err())
	}
	return nil
}

func (l *FileLock) TryLock(_ context.Context) (bool, error) {
	locked, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock on %s: %w", l.path, err)
	}
	return locked, nil
}

func (l *FileLock) Unlock(_ context.Context) error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock on %s: %w", l.path, err)
	}
	return nil
}

// RedisLock holds key with a random token; only the holder's token can delete it.
type RedisLock struct {
	rdb   *redis.Client
	key   string
	ttl   time.Duration
	token string
}

var redisUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLock(rdb *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{rdb: rdb, key: key, ttl: ttl}
}

func (l *RedisLock) Lock(ctx context.Context) error {
	t := time.NewTicker(lockRetryDelay)
	defer t.Stop()
	for {
		ok, err := l.TryLock(ctx)
		if err != nil || ok {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", l.key, ctx.Err())
		case <-t.C:
		}
	}
}

func (l *RedisLock) TryLock(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

func (l *RedisLock) Unlock(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	err := redisUnlock.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
	l.token = ""
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// PgAdvisoryLock is a session-level advisory lock. The session is pinned to
// one pooled connection for as long as the lock is held.
type PgAdvisoryLock struct {
	db   *sql.DB
	id   int64
	conn *sql.Conn
}

func NewPgAdvisoryLock(db *sql.DB, name string) *PgAdvisoryLock {
	h := fnv.New64a()
	_, _ = h.Write([]byte("palletq:" + name))
	return &PgAdvisoryLock{db: db, id: int64(h.Sum64())}
}

func (l *PgAdvisoryLock) Lock(ctx context.Context) error {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1);`, l.id); err != nil {
		conn.Close()
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	l.conn = conn
	return nil
}

func (l *PgAdvisoryLock) TryLock(ctx context.Context) (bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	var ok bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1);`, l.id).Scan(&ok); err != nil {
		conn.Close()
		return false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !ok {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

func (l *PgAdvisoryLock) Unlock(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	conn := l.conn
	l.conn = nil
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1);`, l.id); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}
	return nil
}

// LocalLock serializes holders inside one process.
type LocalLock struct {
	ch chan struct{}
}

func NewLocalLock() *LocalLock {
	return &LocalLock{ch: make(chan struct{}, 1)}
}

func (l *LocalLock) Lock(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *LocalLock) TryLock(_ context.Context) (bool, error) {
	select {
	case l.ch <- struct{}{}:
		return true, nil
	default:
		return false, nil
	}
}

func (l *LocalLock) Unlock(_ context.Context) error {
	select {
	case <-l.ch:
	default:
	}
	return nil
}
