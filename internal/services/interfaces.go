package services

import (
	"context"
	"time"

	"habitflow/internal/models"
)

// CompletionEventStore owns completion events and their one-per-day uniqueness.
type CompletionEventStore interface {
	Exists(ctx context.Context, habitID, userID string, day models.Date) (bool, error)
	// Create returns models.ErrDuplicateEvent when the (habit, user, day) event already exists.
	Create(ctx context.Context, e *models.CompletionEvent) error
	FindByUserAndDateRange(ctx context.Context, userID string, from, to models.Date) ([]models.CompletionEvent, error)
}

type HabitRepository interface {
	FindByID(ctx context.Context, id string) (*models.Habit, error)
	FindActiveByUser(ctx context.Context, userID string) ([]models.Habit, error)
	Save(ctx context.Context, h *models.Habit) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type GoalRepository interface {
	FindDueBefore(ctx context.Context, day models.Date) ([]models.Goal, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountCompletedByUser(ctx context.Context, userID string) (int, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
	FindWithPreference(ctx context.Context, pref models.Preference) ([]models.User, error)
	UpdateStreak(ctx context.Context, id string, streak int) error
	MarkSoulFuelSent(ctx context.Context, id string, at time.Time) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

type AnalyticsStore interface {
	// Create returns models.ErrSnapshotExists when the user already has a snapshot for the day.
	Create(ctx context.Context, a *models.AnalyticsSnapshot) error
}

// MessagePool hands out motivational messages. An empty pool yields the fallback message.
type MessagePool interface {
	SampleActive(ctx context.Context, n int) ([]models.Message, error)
}
