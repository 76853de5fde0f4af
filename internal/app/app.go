package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"habitflow/internal/config"
	"habitflow/internal/db"
	"habitflow/internal/email"
	"habitflow/internal/repository"
	"habitflow/internal/scheduler"
	"habitflow/internal/services"
)

// App is the wired set of stores and services shared by the server and the CLI.
type App struct {
	DB            *sqlx.DB
	Users         *repository.UserRepository
	Habits        *repository.HabitRepository
	Completions   *repository.CompletionRepository
	Goals         *repository.GoalRepository
	Notifications *repository.NotificationRepository
	Analytics     *repository.AnalyticsRepository
	Messages      *repository.MessageRepository
	JobRuns       *repository.JobRunRepository

	Dispatcher *services.Dispatcher
	Completion *services.CompletionService
	Jobs       *services.Jobs
	Scheduler  *scheduler.DailyScheduler
}

// New opens and migrates the database and wires every component from cfg.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := services.ParseReminderPolicy(cfg.ReminderPolicy)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var sender email.Sender = email.UnconfiguredSender{}
	if cfg.EmailConfigured() {
		smtp, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.FromEmail,
			Timeout:  cfg.EmailTimeout,
		})
		if err != nil {
			conn.Close()
			return nil, err
		}
		sender = smtp
	} else {
		log.Warn("SMTP_HOST not set; emails will not be delivered")
	}

	a := &App{
		DB:            conn,
		Users:         repository.NewUserRepository(conn),
		Habits:        repository.NewHabitRepository(conn),
		Completions:   repository.NewCompletionRepository(conn),
		Goals:         repository.NewGoalRepository(conn),
		Notifications: repository.NewNotificationRepository(conn),
		Analytics:     repository.NewAnalyticsRepository(conn),
		Messages:      repository.NewMessageRepository(conn),
		JobRuns:       repository.NewJobRunRepository(conn),
	}

	a.Dispatcher = services.NewDispatcher(a.Notifications, sender, log, services.WithEmailTimeout(cfg.EmailTimeout))
	a.Completion = services.NewCompletionService(a.Habits, a.Completions, a.Users, a.Dispatcher, loc, log)
	a.Jobs = services.NewJobs(services.JobsConfig{
		Users:       a.Users,
		Habits:      a.Habits,
		Goals:       a.Goals,
		Analytics:   a.Analytics,
		Messages:    a.Messages,
		Completions: a.Completions,
		Evaluator:   services.NewReminderEvaluator(a.Goals, a.Completions, policy),
		Dispatcher:  a.Dispatcher,
		SampleSize:  cfg.SoulFuelSample,
		Location:    loc,
		Logger:      log,
	})

	a.Scheduler, err = scheduler.New(a.Jobs, a.JobRuns, scheduler.Config{
		Schedules: map[string]string{
			services.JobSoulFuel:  cfg.SoulFuelSchedule,
			services.JobReminders: cfg.ReminderSchedule,
			services.JobAnalytics: cfg.AnalyticsSchedule,
		},
		Location: loc,
	}, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
