package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int    `validate:"min=1,max=65535"`
	DatabaseURL string // postgres DSN; empty selects the local sqlite file
	SQLitePath  string `validate:"required_without=DatabaseURL"`
	JWTSecret   string `validate:"required"`
	FrontendURL string

	Timezone          string `validate:"required"`
	SchedulerEnabled  bool
	SoulFuelSchedule  string `validate:"required"`
	ReminderSchedule  string `validate:"required"`
	AnalyticsSchedule string `validate:"required"`
	ReminderPolicy    string `validate:"oneof=all_incomplete any_incomplete"`
	SoulFuelSample    int    `validate:"min=1,max=20"`

	SMTPHost     string
	SMTPPort     int `validate:"min=1,max=65535"`
	SMTPUser     string
	SMTPPass     string
	FromEmail    string        `validate:"required"`
	EmailTimeout time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
	LogFile   string
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return Config{}, fmt.Errorf("parse PORT: %w", err)
	}
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
	}
	sample, err := getEnvInt("SOULFUEL_SAMPLE_SIZE", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOULFUEL_SAMPLE_SIZE: %w", err)
	}
	emailTimeout, err := getEnvDuration("EMAIL_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("parse EMAIL_TIMEOUT: %w", err)
	}
	schedulerEnabled, err := getEnvBool("SCHEDULER_ENABLED", true)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}

	cfg := Config{
		Port:              port,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/habitflow.db"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		FrontendURL:       getEnv("FRONTEND_URL", "*"),
		Timezone:          getEnv("APP_TIMEZONE", "UTC"),
		SchedulerEnabled:  schedulerEnabled,
		SoulFuelSchedule:  getEnv("SOULFUEL_SCHEDULE", "0 8 * * *"),
		ReminderSchedule:  getEnv("REMINDER_SCHEDULE", "0 19 * * *"),
		AnalyticsSchedule: getEnv("ANALYTICS_SCHEDULE", "0 23 * * *"),
		ReminderPolicy:    getEnv("REMINDER_POLICY", "all_incomplete"),
		SoulFuelSample:    sample,
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          smtpPort,
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPass:          getEnv("SMTP_PASS", ""),
		FromEmail:         getEnv("FROM_EMAIL", `"HabitFlow" <no-reply@example.com>`),
		EmailTimeout:      emailTimeout,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the reference timezone used for calendar days and cron triggers.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// EmailConfigured reports whether enough SMTP settings are present to send mail.
func (c Config) EmailConfigured() bool {
	return c.SMTPHost != ""
}

func (c Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for key, spec := range map[string]string{
		"SOULFUEL_SCHEDULE":  c.SoulFuelSchedule,
		"REMINDER_SCHEDULE":  c.ReminderSchedule,
		"ANALYTICS_SCHEDULE": c.AnalyticsSchedule,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(v)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}
