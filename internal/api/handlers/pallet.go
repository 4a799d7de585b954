package handlers

import (
	"net/http"
	"pallet-queue-service/internal/api/dto"
	"pallet-queue-service/internal/services"
	"strings"
)

// PalletHandler exposes the pallet being built: scanning, removal and finalize.
type PalletHandler struct {
	Station *services.Station
}

// Pallet serves GET (working set and counts) and DELETE (clear) on /pallet.
func (h *PalletHandler) Pallet(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.show(w, r)
	case http.MethodDelete:
		if err := h.Station.Assembler.Clear(r.Context()); err != nil {
			writeServiceError(w, r, "clear working set", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, "GET, DELETE")
	}
}

func (h *PalletHandler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := dto.PalletResponse{
		Packages: dto.Packages(h.Station.Assembler.WorkingSet(ctx)),
		Counts:   dto.Counts(h.Station.Counter.Counts(ctx)),
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Packages serves POST (scan) and DELETE ?br_code= (remove one) on /pallet/packages.
func (h *PalletHandler) Packages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.scan(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		methodNotAllowed(w, r, "POST, DELETE")
	}
}

func (h *PalletHandler) scan(w http.ResponseWriter, r *http.Request) {
	var req dto.PackageRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.BRCode) == "" || strings.TrimSpace(req.Route) == "" {
		writeError(w, r, http.StatusBadRequest, "br_code and route are required")
		return
	}

	rec, err := h.Station.Scanner.Scan(r.Context(), req.BRCode, req.Route)
	if err != nil {
		writeServiceError(w, r, "scan", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.Package(rec))
}

func (h *PalletHandler) remove(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("br_code"))
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "br_code is required")
		return
	}

	removed, err := h.Station.Assembler.Remove(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, "remove package", err)
		return
	}
	if !removed {
		writeError(w, r, http.StatusNotFound, "package not in working set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Finalize moves the working set into the send queue and starts a sync in the background.
func (h *PalletHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.FinalizeRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if req.TargetPallet < 0 {
		writeError(w, r, http.StatusBadRequest, "target_pallet must not be negative")
		return
	}

	entry, ok, err := h.Station.Queue.EnqueueWorkingSet(r.Context(), services.EnqueueOptions{
		TargetPallet: req.TargetPallet,
		Mode:         strings.TrimSpace(req.Mode),
	})
	if err != nil {
		writeServiceError(w, r, "finalize pallet", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusAccepted, dto.QueueEntry(entry))
}
