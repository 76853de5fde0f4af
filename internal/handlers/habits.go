package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "habitflow/internal/middleware"
	"habitflow/internal/services"
)

type habitCompleter interface {
	CompleteToday(ctx context.Context, userID, habitID string) (*services.CompletionResult, error)
}

type HabitHandler struct {
	completions habitCompleter
}

func NewHabitHandler(completions habitCompleter) *HabitHandler {
	return &HabitHandler{completions: completions}
}

// Complete marks the habit done for today. Repeating it on the same day returns 200 with
// duplicate=true and leaves the streak alone.
func (h *HabitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	habitID := chi.URLParam(r, "id")

	res, err := h.completions.CompleteToday(r.Context(), userID, habitID)
	if err != nil {
		httpError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
