package handlers

import (
	"context"
	"net/http"

	"habitflow/internal/models"
)

type messagePool interface {
	SampleActive(ctx context.Context, n int) ([]models.Message, error)
}

type SoulFuelHandler struct {
	pool messagePool
}

func NewSoulFuelHandler(pool messagePool) *SoulFuelHandler {
	return &SoulFuelHandler{pool: pool}
}

// Today returns one random active message, or the fallback when the pool is empty.
func (h *SoulFuelHandler) Today(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.pool.SampleActive(r.Context(), 1)
	if err != nil {
		httpError(w, err)
		return
	}
	msg := models.FallbackMessage
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	writeJSON(w, http.StatusOK, msg)
}
