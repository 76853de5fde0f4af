package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const notificationColumns = `id, user_id, type, title, message, related_id, is_read, sent_at`

type NotificationRepository struct {
	store
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{store{db: db}}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	n.SentAt = nowUTC(n.SentAt)
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.IsRead, n.SentAt)
	return wrap("create notification", err)
}

// ListByUser returns the newest notifications first, at most limit of them.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY sent_at DESC, id LIMIT ?`

	var out []models.Notification
	if err := r.db.SelectContext(ctx, &out, r.q(query), userID, limit); err != nil {
		return nil, wrap("list notifications", err)
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.q(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`), userID)
	if err != nil {
		return 0, wrap("count unread notifications", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read. Another user's notification is
// reported as models.ErrNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`), id, userID)
	return affectedOne("mark notification read", res, err)
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.q(`UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`), userID)
	if err != nil {
		return 0, wrap("mark all notifications read", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap("mark all notifications read", err)
	}
	return n, nil
}
