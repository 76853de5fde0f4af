package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	mw "habitflow/internal/middleware"
	"habitflow/internal/models"
)

type notificationInbox interface {
	ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationHandler struct {
	inbox notificationInbox
}

func NewNotificationHandler(inbox notificationInbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

type notificationListResponse struct {
	Data        []NotificationDTO `json:"data"`
	UnreadCount int               `json:"unread_count"`
}

// List returns the caller's newest notifications. Query: limit (default 20, max 100), unread_only.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	list, err := h.inbox.ListByUser(r.Context(), userID, limit, unreadOnly)
	if err != nil {
		httpError(w, err)
		return
	}
	unread, err := h.inbox.CountUnread(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}

	resp := notificationListResponse{Data: make([]NotificationDTO, 0, len(list)), UnreadCount: unread}
	for _, n := range list {
		resp.Data = append(resp.Data, ToNotificationDTO(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.MarkRead(r.Context(), chi.URLParam(r, "id"), mw.UserID(r.Context())); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.inbox.MarkAllRead(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
