package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"habitflow/internal/models"
)

// NotificationDTO renders timestamps as RFC3339 strings.
type NotificationDTO struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	RelatedID *string `json:"related_id,omitempty"`
	IsRead    bool    `json:"is_read"`
	SentAt    string  `json:"sent_at"`
}

func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		IsRead:    n.IsRead,
		SentAt:    n.SentAt.UTC().Format(time.RFC3339),
	}
}

type SettingsDTO struct {
	Email     bool `json:"email"`
	Reminders bool `json:"reminders"`
	SoulFuel  bool `json:"soulfuel"`
}

type UserDTO struct {
	ID                   string      `json:"id"`
	Email                string      `json:"email"`
	Name                 string      `json:"name"`
	Timezone             string      `json:"timezone"`
	Streak               int         `json:"streak"`
	NotificationSettings SettingsDTO `json:"notification_settings"`
	LastSoulFuelSent     *string     `json:"last_soulfuel_sent,omitempty"`
	CreatedAt            string      `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Timezone: u.Timezone,
		Streak:   u.Streak,
		NotificationSettings: SettingsDTO{
			Email:     u.NotificationSettings.Email,
			Reminders: u.NotificationSettings.Reminders,
			SoulFuel:  u.NotificationSettings.SoulFuel,
		},
		LastSoulFuelSent: toDateTimeStringPtr(u.LastSoulFuelSent),
		CreatedAt:        u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toDateTimeStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var validate = validator.New()

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &models.ValidationError{Field: fe.Field(), Message: fmt.Sprintf("failed on '%s' validation", fe.Tag())}
		}
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// httpError maps domain errors onto status codes.
func httpError(w http.ResponseWriter, err error) {
	var ooe *models.OutOfOrderEventError
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.As(err, &ooe):
		http.Error(w, ooe.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
