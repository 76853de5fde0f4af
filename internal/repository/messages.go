package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

const messageColumns = `id, message, category, author, is_active, created_at`

// MessageRepository is the pool of motivational messages.
type MessageRepository struct {
	store
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{store{db: db}}
}

func (r *MessageRepository) Create(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = newID()
	}
	if strings.TrimSpace(m.Author) == "" {
		m.Author = models.DefaultMessageAuthor
	}
	if m.Category == "" {
		m.Category = "motivation"
	}
	m.CreatedAt = nowUTC(m.CreatedAt)
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO soulfuel_messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		m.ID, m.Message, m.Category, m.Author, m.Active, m.CreatedAt)
	return wrap("create message", err)
}

// SampleActive returns up to n distinct active messages in random order. An empty pool
// yields the single fallback message.
func (r *MessageRepository) SampleActive(ctx context.Context, n int) ([]models.Message, error) {
	if n <= 0 {
		return nil, nil
	}
	var out []models.Message
	err := r.db.SelectContext(ctx, &out, r.q(`SELECT `+messageColumns+` FROM soulfuel_messages
		WHERE is_active = TRUE ORDER BY RANDOM() LIMIT ?`), n)
	if err != nil {
		return nil, wrap("sample messages", err)
	}
	if len(out) == 0 {
		return []models.Message{models.FallbackMessage}, nil
	}
	return out, nil
}
