package api

import (
	"net/http"
	"pallet-queue-service/internal/api/handlers"
	"pallet-queue-service/internal/services"

	"github.com/sirupsen/logrus"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(station *services.Station, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	palletHandler := &handlers.PalletHandler{Station: station}
	queueHandler := &handlers.QueueHandler{Station: station}
	settingsHandler := &handlers.SettingsHandler{Station: station}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/pallet", palletHandler.Pallet)
	mux.HandleFunc("/pallet/packages", palletHandler.Packages)
	mux.HandleFunc("/pallet/finalize", palletHandler.Finalize)
	mux.HandleFunc("/queue", queueHandler.List)
	mux.HandleFunc("/queue/sync", queueHandler.Sync)
	mux.HandleFunc("/settings", settingsHandler.Settings)

	return loggingMiddleware(log, mux)
}
