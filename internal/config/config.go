package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"pallet-queue-service/internal/domain"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: store.backend is read from PALLET_STORE_BACKEND.
const EnvPrefix = "PALLET"

type Config struct {
	Store struct {
		Backend     string
		Path        string
		DatabaseURL string
		PebbleDir   string
		RedisAddr   string
		RedisPrefix string
	}
	Hub struct {
		BaseURL  string
		Token    string
		Timeout  time.Duration
		RetryMax int
	}
	Station struct {
		Settings  domain.StationSettings
		UserToken string
	}
	Sync struct {
		Interval   time.Duration
		MaxBackoff time.Duration
	}
	Notify struct {
		Debounce     time.Duration
		RedisChannel string
	}
	HTTP struct {
		Addr string
	}
	Log struct {
		Level  string
		Format string
	}
}

// SetDefaults registers every known key, so AutomaticEnv can resolve all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "data/station.db")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.pebble_dir", "data/station.pebble")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.redis_prefix", "palletq")

	v.SetDefault("hub.base_url", "")
	v.SetDefault("hub.token", "")
	v.SetDefault("hub.timeout", 10*time.Second)
	v.SetDefault("hub.retry_max", 2)

	def := domain.DefaultStationSettings()
	v.SetDefault("station.max_packages", def.MaxPackages)
	v.SetDefault("station.letter_range", def.LetterRange)
	v.SetDefault("station.number_range", def.NumberRange)
	v.SetDefault("station.user_token", "")

	v.SetDefault("sync.interval", 30*time.Second)
	v.SetDefault("sync.max_backoff", 5*time.Minute)

	v.SetDefault("notify.debounce", 50*time.Millisecond)
	v.SetDefault("notify.redis_channel", "")

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Bind sets up defaults, environment overrides and the config file on v.
// cfgFile may be empty, in which case $HOME/.palletq.yaml is used when present.
func Bind(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("config: locate home dir: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".palletq")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return nil
}

// Load binds v and returns the resolved configuration.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if err := Bind(v, cfgFile); err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper reads and validates the configuration from an already bound v.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config

	c.Store.Backend = strings.ToLower(strings.TrimSpace(v.GetString("store.backend")))
	c.Store.Path = v.GetString("store.path")
	c.Store.DatabaseURL = v.GetString("store.database_url")
	c.Store.PebbleDir = v.GetString("store.pebble_dir")
	c.Store.RedisAddr = v.GetString("store.redis_addr")
	c.Store.RedisPrefix = v.GetString("store.redis_prefix")

	c.Hub.BaseURL = strings.TrimSpace(v.GetString("hub.base_url"))
	c.Hub.Token = v.GetString("hub.token")
	c.Hub.Timeout = v.GetDuration("hub.timeout")
	c.Hub.RetryMax = v.GetInt("hub.retry_max")

	c.Station.Settings = domain.StationSettings{
		MaxPackages: v.GetInt("station.max_packages"),
		LetterRange: v.GetString("station.letter_range"),
		NumberRange: v.GetString("station.number_range"),
	}
	c.Station.UserToken = v.GetString("station.user_token")

	c.Sync.Interval = v.GetDuration("sync.interval")
	c.Sync.MaxBackoff = v.GetDuration("sync.max_backoff")

	c.Notify.Debounce = v.GetDuration("notify.debounce")
	c.Notify.RedisChannel = v.GetString("notify.redis_channel")

	c.HTTP.Addr = v.GetString("http.addr")

	c.Log.Level = v.GetString("log.level")
	c.Log.Format = v.GetString("log.format")

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := c.Station.Settings.Validate(); err != nil {
		return fmt.Errorf("config: station: %w", err)
	}
	if c.Hub.Timeout <= 0 {
		return fmt.Errorf("config: hub.timeout must be positive, got %s", c.Hub.Timeout)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("config: sync.interval must be positive, got %s", c.Sync.Interval)
	}
	if c.Notify.Debounce < 0 {
		return fmt.Errorf("config: notify.debounce must not be negative, got %s", c.Notify.Debounce)
	}
	return nil
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
