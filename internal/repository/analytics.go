package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const analyticsColumns = `id, user_id, day, habits_completed, total_habits, goals_completed, total_goals, current_streak, created_at`

type AnalyticsRepository struct {
	store
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{store{db: db}}
}

// Create stores one snapshot per user per day. The first snapshot of a day wins and later
// attempts return models.ErrSnapshotExists.
func (r *AnalyticsRepository) Create(ctx context.Context, a *models.AnalyticsSnapshot) error {
	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = nowUTC(a.CreatedAt)
	res, err := r.db.ExecContext(ctx, r.q(`INSERT INTO analytics (`+analyticsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO NOTHING`),
		a.ID, a.UserID, a.Day, a.HabitsCompleted, a.TotalHabits, a.GoalsCompleted, a.TotalGoals, a.CurrentStreak, a.CreatedAt)
	if err != nil {
		return wrap("create analytics snapshot", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("create analytics snapshot", err)
	}
	if n == 0 {
		return models.ErrSnapshotExists
	}
	return nil
}

// ListByUserSince returns the user's snapshots from day onwards, newest first.
func (r *AnalyticsRepository) ListByUserSince(ctx context.Context, userID string, from models.Date) ([]models.AnalyticsSnapshot, error) {
	var out []models.AnalyticsSnapshot
	err := r.db.SelectContext(ctx, &out, r.q(`SELECT `+analyticsColumns+` FROM analytics
		WHERE user_id = ? AND day >= ? ORDER BY day DESC`), userID, from)
	if err != nil {
		return nil, wrap("list analytics snapshots", err)
	}
	return out, nil
}
