package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/models"
)

// JobRunRepository records which scheduled jobs already ran on which day.
type JobRunRepository struct {
	store
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{store{db: db}}
}

// Claim reserves (job, day). It reports false when the pair was already claimed, by this
// process or another one sharing the database.
func (r *JobRunRepository) Claim(ctx context.Context, job string, day models.Date, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(`INSERT INTO job_runs (job, day, started_at) VALUES (?, ?, ?)
		ON CONFLICT (job, day) DO NOTHING`), job, day, at.UTC())
	if err != nil {
		return false, wrap("claim job run", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("claim job run", err)
	}
	return n == 1, nil
}

// Release deletes the (job, day) claim. Releasing a pair that was never claimed is not an error.
func (r *JobRunRepository) Release(ctx context.Context, job string, day models.Date) error {
	if _, err := r.db.ExecContext(ctx, r.q(`DELETE FROM job_runs WHERE job = ? AND day = ?`), job, day); err != nil {
		return wrap("release job run", err)
	}
	return nil
}
