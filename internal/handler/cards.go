package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hatokurandom/hatokurandom/internal/cards"
)

// GET /api/cards/{cid}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	cid, err := cards.ParseCID(mux.Vars(r)["cid"])
	if err != nil {
		if errors.Is(err, cards.ErrInvalidCID) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	card, err := cards.CardFromCID(cid)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}
