package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pallet-queue-service/internal/platform/db"
	"pallet-queue-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseLocker checks that a and b, two holders of the same lock, exclude each other.
func exerciseLocker(t *testing.T, a, b ports.Locker) {
	t.Helper()
	ctx := context.Background()

	ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, b.Lock(short))

	require.NoError(t, a.Unlock(ctx))

	require.NoError(t, b.Lock(ctx))
	ok, err = a.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, b.Unlock(ctx))

	ok, err = a.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, a.Unlock(ctx))
}

func TestFileLock(t *testing.T) {
	base := filepath.Join(t.TempDir(), "station.db.drain")
	a, err := NewFileLock(base)
	require.NoError(t, err)
	b, err := NewFileLock(base)
	require.NoError(t, err)

	exerciseLocker(t, a, b)
	assert.FileExists(t, base+lockFileSuffix)
}

func TestLocalLock(t *testing.T) {
	l := NewLocalLock()
	exerciseLocker(t, l, l)
}

func TestRedisLock(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	a := NewRedisLock(rdb, "station-1:lock:drain", time.Minute)
	b := NewRedisLock(rdb, "station-1:lock:drain", time.Minute)
	exerciseLocker(t, a, b)

	t.Run("expired holder does not block", func(t *testing.T) {
		ctx := context.Background()
		ok, err := a.TryLock(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Minute)

		ok, err = b.TryLock(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		// a's token is gone; its unlock must not release b.
		require.NoError(t, a.Unlock(ctx))
		assert.True(t, mr.Exists("station-1:lock:drain"))
		require.NoError(t, b.Unlock(ctx))
		assert.False(t, mr.Exists("station-1:lock:drain"))
	})
}

func TestPgAdvisoryLock(t *testing.T) {
	url := os.Getenv("PALLET_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PALLET_TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	exerciseLocker(t, NewPgAdvisoryLock(conn, "drain"), NewPgAdvisoryLock(conn, "drain"))
}

func TestNewLockerPerBackend(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLocker(Options{Backend: BackendSqlite, Path: filepath.Join(dir, "station.db")}, nil, "drain")
	require.NoError(t, err)
	assert.IsType(t, &FileLock{}, l)

	l, err = NewLocker(Options{Backend: BackendPebble, PebbleDir: filepath.Join(dir, "pebble")}, nil, "drain")
	require.NoError(t, err)
	assert.IsType(t, &FileLock{}, l)

	l, err = NewLocker(Options{Backend: BackendMemory}, NewMemoryKVStore(), "drain")
	require.NoError(t, err)
	assert.IsType(t, &LocalLock{}, l)

	_, err = NewLocker(Options{Backend: BackendRedis}, NewMemoryKVStore(), "drain")
	assert.Error(t, err)

	_, err = NewLocker(Options{Backend: "etcd"}, nil, "drain")
	assert.Error(t, err)
}
