package handlers

import (
	"net/http"
	"pallet-queue-service/internal/api/dto"
	"pallet-queue-service/internal/services"
)

type SettingsHandler struct {
	Station *services.Station
}

func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, dto.Settings(h.Station.Settings(r.Context())))
	case http.MethodPut:
		h.update(w, r)
	default:
		methodNotAllowed(w, r, "GET, PUT")
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingsRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	ctx := r.Context()
	st := h.Station.Settings(ctx)
	if req.MaxPackages != nil {
		st.MaxPackages = *req.MaxPackages
	}
	if req.LetterRange != nil {
		st.LetterRange = *req.LetterRange
	}
	if req.NumberRange != nil {
		st.NumberRange = *req.NumberRange
	}

	if err := h.Station.SaveSettings(ctx, st); err != nil {
		writeServiceError(w, r, "save settings", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.Settings(st))
}
