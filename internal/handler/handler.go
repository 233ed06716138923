package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hatokurandom/hatokurandom/internal/service"
)

// Handler serves the JSON API and the rendered pages.
type Handler struct {
	supplies *service.SupplyService
	pages    *service.PageService
	logger   *zap.Logger
}

func New(supplies *service.SupplyService, pages *service.PageService, logger *zap.Logger) *Handler {
	return &Handler{supplies: supplies, pages: pages, logger: logger}
}

// Register mounts every route on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/codec/encode", h.Encode).Methods(http.MethodGet)
	api.HandleFunc("/codec/decode/{text}", h.Decode).Methods(http.MethodGet)
	api.HandleFunc("/cards/{cid}", h.GetCard).Methods(http.MethodGet)
	api.HandleFunc("/supplies", h.ListSupplies).Methods(http.MethodGet)
	api.HandleFunc("/supplies", h.CreateSupply).Methods(http.MethodPost)
	api.HandleFunc("/supplies/{sid}", h.GetSupply).Methods(http.MethodGet)
	api.HandleFunc("/supplies/{sid}", h.DeleteSupply).Methods(http.MethodDelete)

	r.HandleFunc("/pages/{pid}", h.Page).Methods(http.MethodGet)
	r.HandleFunc("/pages/", h.Page).Methods(http.MethodGet)
}

// helper: write JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// helper: write an error message in JSON form { "error": "msg" }
func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
}
