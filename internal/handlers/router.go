package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	mw "habitflow/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigin string
	Auth          *mw.AuthMiddleware
	Logger        *zap.Logger

	Habits        *HabitHandler
	Notifications *NotificationHandler
	Users         *UserHandler
	SoulFuel      *SoulFuelHandler
	Analytics     *AnalyticsHandler
	Admin         *AdminHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.ZapRequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: origin != "*",
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Group(func(pr chi.Router) {
			pr.Use(cfg.Auth.RequireAuth)
			pr.Post("/habits/{id}/complete", cfg.Habits.Complete)
			pr.Get("/notifications", cfg.Notifications.List)
			pr.Patch("/notifications/read-all", cfg.Notifications.MarkAllRead)
			pr.Patch("/notifications/{id}/read", cfg.Notifications.MarkRead)
			pr.Get("/me", cfg.Users.GetMe)
			pr.Put("/me/notification-settings", cfg.Users.UpdateNotificationSettings)
			pr.Get("/soulfuel/today", cfg.SoulFuel.Today)
			pr.Get("/analytics/snapshots", cfg.Analytics.Snapshots)

			pr.Group(func(ar chi.Router) {
				ar.Use(cfg.Auth.RequireAdmin)
				ar.Post("/admin/soulfuel", cfg.Admin.CreateMessage)
				ar.Post("/admin/jobs/{name}/run", cfg.Admin.RunJob)
			})
		})
	})

	return r
}
