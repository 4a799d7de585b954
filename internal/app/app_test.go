package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pallet-queue-service/internal/adapters/notify"
	"pallet-queue-service/internal/adapters/storage"
	"pallet-queue-service/internal/config"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/platform/obs"
	"pallet-queue-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() config.Config {
	var c config.Config
	c.Store.Backend = storage.BackendMemory
	c.Hub.Timeout = time.Second
	c.Station.Settings = domain.DefaultStationSettings()
	c.Sync.Interval = time.Minute
	c.Sync.MaxBackoff = time.Minute
	c.Notify.Debounce = time.Millisecond
	return c
}

func scanAndFinalize(t *testing.T, a *App) domain.QueueEntry {
	t.Helper()
	ctx := context.Background()
	_, err := a.Station.Scanner.Scan(ctx, "BR0000000000001", "A-1")
	require.NoError(t, err)

	entry, ok, err := a.Station.Queue.EnqueueWorkingSet(ctx, services.EnqueueOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	a.Station.Drainer.Wait()
	return entry
}

func TestBuildWithoutHubKeepsPalletsQueued(t *testing.T) {
	a, err := Build(baseConfig(), obs.Discard())
	require.NoError(t, err)
	defer a.Close()

	scanAndFinalize(t, a)

	pending, err := a.Station.Queue.Pending(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBuildSyncsToHub(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pallets/available":
			_, _ = w.Write([]byte(`{"palletId": 9}`))
		case "/api/pallets":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.Hub.BaseURL = srv.URL
	a, err := Build(cfg, obs.Discard())
	require.NoError(t, err)
	defer a.Close()

	scanAndFinalize(t, a)

	pending, err := a.Station.Queue.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.EqualValues(t, 9, got["pallet"])
}

func TestBuildPublishesOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := baseConfig()
	cfg.Store.Backend = storage.BackendRedis
	cfg.Store.RedisAddr = mr.Addr()
	cfg.Store.RedisPrefix = "st1"
	cfg.Notify.RedisChannel = "station:st1"

	a, err := Build(cfg, obs.Discard())
	require.NoError(t, err)
	defer a.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	sub := rdb.Subscribe(context.Background(), "station:st1")
	defer sub.Close()
	_, err = sub.Receive(context.Background())
	require.NoError(t, err)

	entry := scanAndFinalize(t, a)

	ch := sub.Channel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			var m notify.Message
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &m))
			if m.Kind != "sync" {
				continue
			}
			require.NotNil(t, m.Event)
			assert.Equal(t, domain.SyncEventError, m.Event.Type)
			assert.Equal(t, entry.ID, m.Event.EntryID)
			return
		case <-deadline:
			t.Fatal("no sync message published")
		}
	}
}

func TestBuildUnknownBackend(t *testing.T) {
	cfg := baseConfig()
	cfg.Store.Backend = "floppy"
	_, err := Build(cfg, obs.Discard())
	assert.Error(t, err)
}

func TestAppsSharingSqliteFileDrainOneAtATime(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pallets/available":
			_, _ = w.Write([]byte(`{"palletId": 9}`))
		case "/api/pallets":
			once.Do(func() {
				close(entered)
				<-release
			})
			_, _ = w.Write([]byte(`{"ok": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.Store.Backend = storage.BackendSqlite
	cfg.Store.Path = filepath.Join(t.TempDir(), "station.db")
	cfg.Hub.BaseURL = srv.URL
	cfg.Hub.Timeout = 5 * time.Second

	server, err := Build(cfg, obs.Discard())
	require.NoError(t, err)
	defer server.Close()
	cli, err := Build(cfg, obs.Discard())
	require.NoError(t, err)
	defer cli.Close()

	ctx := context.Background()
	_, err = server.Station.Scanner.Scan(ctx, "BR0000000000001", "A-1")
	require.NoError(t, err)
	_, ok, err := server.Station.Queue.EnqueueWorkingSet(ctx, services.EnqueueOptions{})
	require.NoError(t, err)
	require.True(t, ok)
	<-entered

	report := cli.Station.Drainer.Drain(ctx)
	assert.Equal(t, services.StopBusy, report.Stop)

	close(release)
	server.Station.Drainer.Wait()

	pending, err := cli.Station.Queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
