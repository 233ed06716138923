package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hatokurandom/hatokurandom/internal/models"
	"github.com/hatokurandom/hatokurandom/pkg/base64xml"
	"github.com/hatokurandom/hatokurandom/pkg/metrics"
)

// GET /api/codec/encode?v=11&v=52&v=47&v=4
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["v"]
	values := make([]int, 0, len(raw))
	for _, s := range raw {
		v, err := strconv.Atoi(s)
		if err != nil {
			metrics.CodecErrors.WithLabelValues("encode").Inc()
			h.writeError(w, http.StatusBadRequest, "value is not an integer: "+s)
			return
		}
		values = append(values, v)
	}

	text, err := base64xml.Encode(values)
	if err != nil {
		metrics.CodecErrors.WithLabelValues("encode").Inc()
		if errors.Is(err, base64xml.ErrInvalidValue) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.EncodeResponse{Text: text})
}

// GET /api/codec/decode/{text}
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	values, err := base64xml.Decode(mux.Vars(r)["text"])
	if err != nil {
		metrics.CodecErrors.WithLabelValues("decode").Inc()
		if errors.Is(err, base64xml.ErrInvalidCharacter) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, models.DecodeResponse{Values: values})
}
