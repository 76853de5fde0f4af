package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const goalColumns = `id, user_id, title, description, target_date, progress, completed, completed_at, created_at`

type GoalRepository struct {
	store
}

func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{store{db: db}}
}

func (r *GoalRepository) Create(ctx context.Context, g *models.Goal) error {
	if g.ID == "" {
		g.ID = newID()
	}
	g.CreatedAt = nowUTC(g.CreatedAt)
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.UserID, g.Title, g.Description, g.TargetDate, g.Progress, g.Completed, g.CompletedAt, g.CreatedAt)
	return wrap("create goal", err)
}

// FindDueBefore returns incomplete goals of every user whose target date is on or before day.
// Goals without a target date are never returned.
func (r *GoalRepository) FindDueBefore(ctx context.Context, day models.Date) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.SelectContext(ctx, &goals, r.q(`SELECT `+goalColumns+` FROM goals
		WHERE completed = FALSE AND target_date IS NOT NULL AND target_date <= ?
		ORDER BY target_date, id`), day)
	if err != nil {
		return nil, wrap("list due goals", err)
	}
	return goals, nil
}

func (r *GoalRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM goals WHERE user_id = ?`), userID); err != nil {
		return 0, wrap("count goals", err)
	}
	return n, nil
}

func (r *GoalRepository) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM goals WHERE user_id = ? AND completed = TRUE`), userID)
	if err != nil {
		return 0, wrap("count completed goals", err)
	}
	return n, nil
}
