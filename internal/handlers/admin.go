package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"habitflow/internal/models"
	"habitflow/internal/scheduler"
	"habitflow/internal/services"
)

type jobTrigger interface {
	RunNow(ctx context.Context, name string) (services.JobReport, error)
}

type messageCreator interface {
	Create(ctx context.Context, m *models.Message) error
}

// AdminHandler serves the admin-only routes. The admin check happens in middleware.
type AdminHandler struct {
	jobs     jobTrigger
	messages messageCreator
}

func NewAdminHandler(jobs jobTrigger, messages messageCreator) *AdminHandler {
	return &AdminHandler{jobs: jobs, messages: messages}
}

type messageRequest struct {
	Message  string `json:"message" validate:"required,max=500"`
	Category string `json:"category" validate:"omitempty,oneof=motivation inspiration mindfulness growth"`
	Author   string `json:"author" validate:"max=100"`
	Active   *bool  `json:"is_active"`
}

// CreateMessage adds an entry to the SoulFuel pool.
func (h *AdminHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := decodeAndValidate(r, &body); err != nil {
		httpError(w, err)
		return
	}
	m := &models.Message{
		Message:  body.Message,
		Category: body.Category,
		Author:   body.Author,
		Active:   body.Active == nil || *body.Active,
	}
	if err := h.messages.Create(r.Context(), m); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// RunJob triggers a daily job immediately and returns its report. The batch keeps running if
// the client goes away.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	report, err := h.jobs.RunNow(context.WithoutCancel(r.Context()), chi.URLParam(r, "name"))
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrJobRunning):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, scheduler.ErrStopped):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
