package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hatokurandom/hatokurandom/internal/service"
)

// GET /pages/{pid}
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	body, err := h.pages.Render(r.Context(), mux.Vars(r)["pid"])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPageNotFound), errors.Is(err, service.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Warn("failed to write page", zap.Error(err))
	}
}
