package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

// Queries are written with ? placeholders and rebound for the connection's driver.
type store struct {
	db *sqlx.DB
}

func (s store) q(query string) string {
	return s.db.Rebind(query)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return &models.RepositoryError{Op: op, Err: err}
}

func newID() string {
	return uuid.NewString()
}

func nowUTC(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// affectedOne turns an update that touched no rows into models.ErrNotFound.
func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
