package handlers

import (
	"net/http"
	"pallet-queue-service/internal/api/dto"
	"pallet-queue-service/internal/services"
)

type QueueHandler struct {
	Station *services.Station
}

// List returns the pallets still waiting for hub confirmation, head first.
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	ctx := r.Context()
	entries, err := h.Station.Queue.Pending(ctx)
	if err != nil {
		writeServiceError(w, r, "list queue", err)
		return
	}

	res := dto.QueueResponse{
		Entries: make([]dto.QueueEntryResponse, 0, len(entries)),
		Counts:  dto.Counts(h.Station.Counter.Counts(ctx)),
	}
	for _, e := range entries {
		res.Entries = append(res.Entries, dto.QueueEntry(e))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Sync runs a drain pass and waits for it. A pass already in flight yields 409.
func (h *QueueHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	report := h.Station.Drainer.Drain(r.Context())
	status := http.StatusOK
	if report.Stop == services.StopBusy {
		status = http.StatusConflict
	}
	writeJSON(w, r, status, dto.Sync(report))
}
