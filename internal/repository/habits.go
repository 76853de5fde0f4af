package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const habitColumns = `id, user_id, name, category, frequency, times_per_day, reminder_time, active,
	current_streak, longest_streak, last_completed_date, created_at`

type HabitRepository struct {
	store
}

func NewHabitRepository(db *sqlx.DB) *HabitRepository {
	return &HabitRepository{store{db: db}}
}

// Create inserts h with the defaults a new habit gets.
func (r *HabitRepository) Create(ctx context.Context, h *models.Habit) error {
	if h.ID == "" {
		h.ID = newID()
	}
	if h.Category == "" {
		h.Category = "General"
	}
	if h.Frequency == "" {
		h.Frequency = "Daily"
	}
	if h.TimesPerDay == 0 {
		h.TimesPerDay = 1
	}
	h.CreatedAt = nowUTC(h.CreatedAt)
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		h.ID, h.UserID, h.Name, h.Category, h.Frequency, h.TimesPerDay, h.ReminderTime, h.Active,
		h.CurrentStreak, h.LongestStreak, h.LastCompletedDate, h.CreatedAt)
	return wrap("create habit", err)
}

func (r *HabitRepository) FindByID(ctx context.Context, id string) (*models.Habit, error) {
	var h models.Habit
	if err := r.db.GetContext(ctx, &h, r.q(`SELECT `+habitColumns+` FROM habits WHERE id = ?`), id); err != nil {
		return nil, wrap("find habit "+id, err)
	}
	return &h, nil
}

// FindActiveByUser returns the user's active habits, oldest first.
func (r *HabitRepository) FindActiveByUser(ctx context.Context, userID string) ([]models.Habit, error) {
	var habits []models.Habit
	err := r.db.SelectContext(ctx, &habits, r.q(`SELECT `+habitColumns+` FROM habits
		WHERE user_id = ? AND active = TRUE ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, wrap("list active habits", err)
	}
	return habits, nil
}

// Save persists the mutable fields of an existing habit.
func (r *HabitRepository) Save(ctx context.Context, h *models.Habit) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE habits SET
		name = ?, category = ?, frequency = ?, times_per_day = ?, reminder_time = ?, active = ?,
		current_streak = ?, longest_streak = ?, last_completed_date = ?
		WHERE id = ?`),
		h.Name, h.Category, h.Frequency, h.TimesPerDay, h.ReminderTime, h.Active,
		h.CurrentStreak, h.LongestStreak, h.LastCompletedDate, h.ID)
	return affectedOne("save habit", res, err)
}

// CountByUser counts all of the user's habits, active or not.
func (r *HabitRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM habits WHERE user_id = ?`), userID); err != nil {
		return 0, wrap("count habits", err)
	}
	return n, nil
}
