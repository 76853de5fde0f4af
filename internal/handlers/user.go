package handlers

import (
	"context"
	"net/http"

	mw "habitflow/internal/middleware"
	"habitflow/internal/models"
)

type userSettingsStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateNotificationSettings(ctx context.Context, id string, s models.NotificationSettings) error
}

type UserHandler struct {
	users userSettingsStore
}

func NewUserHandler(users userSettingsStore) *UserHandler {
	return &UserHandler{users: users}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.FindByID(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}

type settingsRequest struct {
	Email     *bool `json:"email"`
	Reminders *bool `json:"reminders"`
	SoulFuel  *bool `json:"soulfuel"`
}

// UpdateNotificationSettings changes only the settings present in the body.
func (h *UserHandler) UpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	var body settingsRequest
	if err := decodeAndValidate(r, &body); err != nil {
		httpError(w, err)
		return
	}

	u, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	s := u.NotificationSettings
	if body.Email != nil {
		s.Email = *body.Email
	}
	if body.Reminders != nil {
		s.Reminders = *body.Reminders
	}
	if body.SoulFuel != nil {
		s.SoulFuel = *body.SoulFuel
	}

	if err := h.users.UpdateNotificationSettings(r.Context(), userID, s); err != nil {
		httpError(w, err)
		return
	}
	u.NotificationSettings = s
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}
