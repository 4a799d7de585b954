// Package app builds a station from configuration. It is shared by the
// server and the operator CLI so both wire the same adapters.
package app

import (
	"fmt"

	"pallet-queue-service/internal/adapters/hub"
	"pallet-queue-service/internal/adapters/notify"
	"pallet-queue-service/internal/adapters/repositories"
	"pallet-queue-service/internal/adapters/storage"
	"pallet-queue-service/internal/config"
	"pallet-queue-service/internal/ports"
	"pallet-queue-service/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Names of the cross-process locks every station process takes on its store.
const (
	StoreLockName = "store"
	DrainLockName = "drain"
)

type App struct {
	Config  config.Config
	Store   ports.KVStore
	Station *services.Station

	log     logrus.FieldLogger
	closers []func() error
}

// Build opens the local store, the hub client and the notifiers, and wires
// them into a Station. Close releases everything Build opened.
func Build(cfg config.Config, log logrus.FieldLogger) (*App, error) {
	a := &App{Config: cfg, log: log}

	store, err := storage.Open(StoreOptions(cfg), log)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	client, err := a.hubClient()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build app: %w", err)
	}

	notifier := a.notifier(store)

	storeLock, err := storage.NewLocker(StoreOptions(cfg), store, StoreLockName)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build app: %w", err)
	}
	drainLock, err := storage.NewLocker(StoreOptions(cfg), store, DrainLockName)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build app: %w", err)
	}

	repo := repositories.NewJSONPalletRepository(store, log)
	repo.Locker = storeLock
	a.Station = services.NewStation(repo, client, notifier, services.StationOptions{
		Defaults:    cfg.Station.Settings,
		UserToken:   cfg.Station.UserToken,
		Debounce:    cfg.Notify.Debounce,
		CallTimeout: cfg.Hub.Timeout,
		DrainLock:   drainLock,
	}, log)

	log.WithFields(logrus.Fields{
		"backend": cfg.Store.Backend,
		"hub":     cfg.Hub.BaseURL,
	}).Debug("station ready")
	return a, nil
}

// StoreOptions maps the store.* keys onto storage options.
func StoreOptions(cfg config.Config) storage.Options {
	return storage.Options{
		Backend:     cfg.Store.Backend,
		Path:        cfg.Store.Path,
		DatabaseURL: cfg.Store.DatabaseURL,
		PebbleDir:   cfg.Store.PebbleDir,
		RedisAddr:   cfg.Store.RedisAddr,
		RedisPrefix: cfg.Store.RedisPrefix,
	}
}

func (a *App) hubClient() (ports.PalletClient, error) {
	if a.Config.Hub.BaseURL == "" {
		a.log.Warn("hub.base_url not set; pallets will stay queued")
		return hub.OfflinePalletClient{}, nil
	}
	return hub.NewHTTPPalletClient(hub.Options{
		BaseURL:  a.Config.Hub.BaseURL,
		Token:    a.Config.Hub.Token,
		Timeout:  a.Config.Hub.Timeout,
		RetryMax: a.Config.Hub.RetryMax,
	}, a.log)
}

// notifier always logs; it also publishes on Redis when a channel is configured.
func (a *App) notifier(store ports.KVStore) ports.Notifier {
	sinks := notify.Multi{notify.LogNotifier{Log: a.log}}

	channel := a.Config.Notify.RedisChannel
	if channel == "" {
		return sinks
	}

	var rdb *redis.Client
	switch {
	case a.Config.Store.Backend == storage.BackendRedis:
		if rs, ok := store.(*storage.RedisKVStore); ok {
			rdb = rs.Client()
		}
	case a.Config.Store.RedisAddr != "":
		rdb = redis.NewClient(&redis.Options{Addr: a.Config.Store.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
	}
	if rdb == nil {
		a.log.WithField("channel", channel).Warn("notify.redis_channel set but no redis address; not publishing")
		return sinks
	}

	return append(sinks, notify.NewRedisNotifier(rdb, channel, a.log))
}

// Scheduler returns a drain scheduler using the configured interval and backoff cap.
func (a *App) Scheduler() *services.Scheduler {
	return services.NewScheduler(a.Station.Drainer, a.Config.Sync.Interval, a.Config.Sync.MaxBackoff, a.log)
}

// Close stops the station and closes what Build opened, last opened first.
func (a *App) Close() error {
	if a.Station != nil {
		a.Station.Close()
	}

	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
