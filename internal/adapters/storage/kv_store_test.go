package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pallet-queue-service/internal/platform/db"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKVStore runs the behavior every backend must share.
func exerciseKVStore(t *testing.T, store ports.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "currentPallet")
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "palletQueue", []byte(`[{"packages":[]}]`)))

		got, err := store.Get(ctx, "palletQueue")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"packages":[]}]`, string(got))
	})

	t.Run("put replaces", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "maxPackages", []byte("15")))
		require.NoError(t, store.Put(ctx, "maxPackages", []byte("20")))

		got, err := store.Get(ctx, "maxPackages")
		require.NoError(t, err)
		assert.Equal(t, "20", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "currentPallet", []byte("[]")))
		require.NoError(t, store.Delete(ctx, "currentPallet"))

		_, err := store.Get(ctx, "currentPallet")
		assert.ErrorIs(t, err, ports.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, "never-written"))
	})
}

func TestSqliteKVStore(t *testing.T) {
	store, err := Open(Options{Backend: BackendSqlite, Path: filepath.Join(t.TempDir(), "station.db")}, obs.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exerciseKVStore(t, store)
}

func TestSqliteKVStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.db")
	ctx := context.Background()

	first, err := Open(Options{Path: path}, obs.Discard())
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "palletQueue", []byte(`[1]`)))
	require.NoError(t, first.Close())

	second, err := Open(Options{Path: path}, obs.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	got, err := second.Get(ctx, "palletQueue")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got))
}

func TestSqliteKVStoreNilDB(t *testing.T) {
	store := NewSqliteKVStore(nil, nil)
	_, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrNotFound)
}

func TestPebbleKVStore(t *testing.T) {
	store, err := Open(Options{Backend: BackendPebble, PebbleDir: t.TempDir()}, obs.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exerciseKVStore(t, store)
}

func TestRedisKVStore(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store, err := NewRedisKVStore(&redis.Options{Addr: mr.Addr()}, "station-1", obs.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	exerciseKVStore(t, store)

	t.Run("keys are prefixed", func(t *testing.T) {
		require.NoError(t, store.Put(context.Background(), "letterRange", []byte("A-G")))
		got, err := mr.Get("station-1:letterRange")
		require.NoError(t, err)
		assert.Equal(t, "A-G", got)
	})
}

func TestRedisKVStoreRejectsEmptyAddr(t *testing.T) {
	_, err := NewRedisKVStore(&redis.Options{}, "", nil)
	assert.Error(t, err)
}

func TestSQLKVStore(t *testing.T) {
	url := os.Getenv("PALLET_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PALLET_TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	require.NoError(t, InitSchema(conn))
	_, err = conn.Exec(`DELETE FROM kv;`)
	require.NoError(t, err)

	store := NewSQLKVStore(conn, obs.Discard())
	t.Cleanup(func() { store.Close() })

	exerciseKVStore(t, store)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "floppy"}, obs.Discard())
	assert.Error(t, err)
}

func TestMemoryKVStore(t *testing.T) {
	store, err := Open(Options{Backend: BackendMemory}, obs.Discard())
	require.NoError(t, err)

	exerciseKVStore(t, store)
}
