package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	mw "habitflow/internal/middleware"
	"habitflow/internal/models"
)

type snapshotLister interface {
	ListByUserSince(ctx context.Context, userID string, from models.Date) ([]models.AnalyticsSnapshot, error)
}

type AnalyticsHandler struct {
	snapshots snapshotLister
	loc       *time.Location
	now       func() time.Time
}

func NewAnalyticsHandler(snapshots snapshotLister, loc *time.Location) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{snapshots: snapshots, loc: loc, now: time.Now}
}

type snapshotsResponse struct {
	From      string                     `json:"from"`
	To        string                     `json:"to"`
	Snapshots []models.AnalyticsSnapshot `json:"snapshots"`
}

// Snapshots lists the caller's daily snapshots for the last `days` days (default 7, max 365),
// today included.
func (h *AnalyticsHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "invalid days; expected 1-365", http.StatusBadRequest)
			return
		}
		days = n
	}

	today := models.Today(h.now(), h.loc)
	from := today.AddDays(-(days - 1))
	list, err := h.snapshots.ListByUserSince(r.Context(), mw.UserID(r.Context()), from)
	if err != nil {
		httpError(w, err)
		return
	}
	if list == nil {
		list = []models.AnalyticsSnapshot{}
	}
	writeJSON(w, http.StatusOK, snapshotsResponse{From: from.String(), To: today.String(), Snapshots: list})
}
