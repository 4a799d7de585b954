package storage

import (
	"fmt"
	"pallet-queue-service/internal/platform/db"
	"pallet-queue-service/internal/ports"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
	BackendPebble   = "pebble"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Options selects and configures one KVStore backend.
type Options struct {
	Backend     string
	Path        string // sqlite file
	DatabaseURL string // postgres
	PebbleDir   string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the configured backend, creating the schema where one is needed.
func Open(opts Options, log logrus.FieldLogger) (ports.KVStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSqlite:
		conn, err := db.OpenSqlite(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return NewSqliteKVStore(conn, log), nil

	case BackendPostgres:
		if strings.TrimSpace(opts.DatabaseURL) == "" {
			return nil, fmt.Errorf("open store: database url is required for backend %q", opts.Backend)
		}
		conn, err := db.Open(opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		if err := InitSchema(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		return NewSQLKVStore(conn, log), nil

	case BackendPebble:
		s, err := OpenPebbleKVStore(opts.PebbleDir, log)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil

	case BackendRedis:
		s, err := NewRedisKVStore(&redis.Options{Addr: opts.RedisAddr}, opts.RedisPrefix, log)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return s, nil

	case BackendMemory:
		return NewMemoryKVStore(), nil

	default:
		return nil, fmt.Errorf("open store: unknown backend %q", opts.Backend)
	}
}
