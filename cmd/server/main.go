package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitflow/internal/app"
	"habitflow/internal/config"
	"habitflow/internal/handlers"
	"habitflow/internal/logger"
	mw "habitflow/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	loc, _ := cfg.Location()
	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigin: cfg.FrontendURL,
		Auth:          mw.NewAuthMiddleware([]byte(cfg.JWTSecret)),
		Logger:        log,
		Habits:        handlers.NewHabitHandler(a.Completion),
		Notifications: handlers.NewNotificationHandler(a.Notifications),
		Users:         handlers.NewUserHandler(a.Users),
		SoulFuel:      handlers.NewSoulFuelHandler(a.Messages),
		Analytics:     handlers.NewAnalyticsHandler(a.Analytics, loc),
		Admin:         handlers.NewAdminHandler(a.Scheduler, a.Messages),
	})

	if cfg.SchedulerEnabled {
		a.Scheduler.Start()
	} else {
		log.Info("scheduler disabled; jobs run only when triggered")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("server starting", zap.String("addr", addr), zap.String("timezone", cfg.Timezone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown initiated")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := a.Scheduler.Stop(ctx); err != nil {
		log.Error("scheduler shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
