package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const completionColumns = `id, habit_id, user_id, day, completed, created_at`

// CompletionRepository stores completion events and owns their per-day uniqueness.
type CompletionRepository struct {
	store
}

func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{store{db: db}}
}

func (r *CompletionRepository) Exists(ctx context.Context, habitID, userID string, day models.Date) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM completion_events
		WHERE habit_id = ? AND user_id = ? AND day = ?`), habitID, userID, day)
	if err != nil {
		return false, wrap("check completion", err)
	}
	return n > 0, nil
}

// Create inserts e. A second event for the same habit, user and day yields models.ErrDuplicateEvent
// and leaves the stored event untouched.
func (r *CompletionRepository) Create(ctx context.Context, e *models.CompletionEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	e.CreatedAt = nowUTC(e.CreatedAt)
	res, err := r.db.ExecContext(ctx, r.q(`INSERT INTO completion_events (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, user_id, day) DO NOTHING`),
		e.ID, e.HabitID, e.UserID, e.Day, e.Completed, e.CreatedAt)
	if err != nil {
		return wrap("create completion", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("create completion", err)
	}
	if n == 0 {
		return models.ErrDuplicateEvent
	}
	return nil
}

// FindByUserAndDateRange returns the user's events with from <= day <= to.
func (r *CompletionRepository) FindByUserAndDateRange(ctx context.Context, userID string, from, to models.Date) ([]models.CompletionEvent, error) {
	var events []models.CompletionEvent
	err := r.db.SelectContext(ctx, &events, r.q(`SELECT `+completionColumns+` FROM completion_events
		WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day, created_at`), userID, from, to)
	if err != nil {
		return nil, wrap("list completions", err)
	}
	return events, nil
}
