package main

import (
	"context"

	"pallet-queue-service/internal/adapters/repositories"
	"pallet-queue-service/internal/app"
	"pallet-queue-service/internal/adapters/storage"
	"pallet-queue-service/internal/config"
	"pallet-queue-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// dbtool prepares a station's local store: it creates the schema for the
// configured backend and seeds station settings from YAML.
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(viper.New(), config.Get("PALLET_CONFIG", ""))
	if err != nil {
		logrus.Fatal(err)
	}
	log, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatal(err)
	}

	seedPath := config.Get("SEED_PATH", "data/seeds/station.yaml")
	if err := initAndSeed(cfg, seedPath, log); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(cfg config.Config, seedPath string, log *logrus.Logger) error {
	log.WithField("backend", cfg.Store.Backend).Info("Initializing store schema...")
	opts := app.StoreOptions(cfg)
	store, err := storage.Open(opts, log)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("Store ready.")

	lock, err := storage.NewLocker(opts, store, app.StoreLockName)
	if err != nil {
		return err
	}

	log.WithField("seed", seedPath).Info("Seeding station settings...")
	repo := repositories.NewJSONPalletRepository(store, log)
	repo.Locker = lock
	if err := repositories.SeedFromYAML(context.Background(), repo, cfg.Station.Settings, seedPath); err != nil {
		return err
	}
	log.Info("Seeding complete.")
	return nil
}
