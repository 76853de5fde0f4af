package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const userColumns = `id, email, name, notify_email, notify_reminders, notify_soulfuel, timezone, streak, last_soulfuel_sent, created_at`

// UserRepository handles user data access operations.
type UserRepository struct {
	store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{store{db: db}}
}

// Create inserts u, filling in the id, timezone and creation time when they are unset.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	u.CreatedAt = nowUTC(u.CreatedAt)
	s := u.NotificationSettings
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, s.Email, s.Reminders, s.SoulFuel,
		u.Timezone, u.Streak, u.LastSoulFuelSent, u.CreatedAt)
	return wrap("create user", err)
}

// FindByID retrieves a user by id. It returns models.ErrNotFound when no row matches.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, r.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, wrap(fmt.Sprintf("find user %s", id), err)
	}
	return &u, nil
}

// All returns every user ordered by creation time.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

// FindWithPreference returns users that have the given notification preference enabled.
func (r *UserRepository) FindWithPreference(ctx context.Context, pref models.Preference) ([]models.User, error) {
	column, err := preferenceColumn(pref)
	if err != nil {
		return nil, err
	}
	var users []models.User
	err = r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = TRUE ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list users by preference "+string(pref), err)
	}
	return users, nil
}

func preferenceColumn(pref models.Preference) (string, error) {
	switch pref {
	case models.PreferenceEmail:
		return "notify_email", nil
	case models.PreferenceReminders:
		return "notify_reminders", nil
	case models.PreferenceSoulFuel:
		return "notify_soulfuel", nil
	}
	return "", &models.ValidationError{Field: "preference", Message: fmt.Sprintf("unknown preference %q", pref)}
}

// UpdateNotificationSettings replaces the user's notification settings.
func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id string, s models.NotificationSettings) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE users
		SET notify_email = ?, notify_reminders = ?, notify_soulfuel = ? WHERE id = ?`),
		s.Email, s.Reminders, s.SoulFuel, id)
	return affectedOne("update notification settings", res, err)
}

// UpdateStreak stores the user's overall streak.
func (r *UserRepository) UpdateStreak(ctx context.Context, id string, streak int) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE users SET streak = ? WHERE id = ?`), streak, id)
	return affectedOne("update user streak", res, err)
}

// MarkSoulFuelSent records when the user last received their daily messages.
func (r *UserRepository) MarkSoulFuelSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE users SET last_soulfuel_sent = ? WHERE id = ?`), at.UTC(), id)
	return affectedOne("mark soulfuel sent", res, err)
}
