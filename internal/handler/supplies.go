package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hatokurandom/hatokurandom/internal/models"
	"github.com/hatokurandom/hatokurandom/internal/service"
)

// GET /api/supplies/{sid}
func (h *Handler) GetSupply(w http.ResponseWriter, r *http.Request) {
	resp, err := h.supplies.View(r.Context(), mux.Vars(r)["sid"])
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "supply not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// DELETE /api/supplies/{sid}
func (h *Handler) DeleteSupply(w http.ResponseWriter, r *http.Request) {
	if err := h.supplies.Delete(r.Context(), mux.Vars(r)["sid"]); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "supply not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/supplies
func (h *Handler) CreateSupply(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSupplyRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	resp, err := h.supplies.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// GET /api/supplies?limit=20
func (h *Handler) ListSupplies(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.supplies.Recent(r.Context(), limit)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if list == nil {
		list = []models.SavedSupply{}
	}
	h.writeJSON(w, http.StatusOK, list)
}
