package db

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Calendar days are stored as YYYY-MM-DD text in both dialects so comparisons stay lexical.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    notify_email BOOLEAN NOT NULL DEFAULT TRUE,
    notify_reminders BOOLEAN NOT NULL DEFAULT TRUE,
    notify_soulfuel BOOLEAN NOT NULL DEFAULT TRUE,
    timezone TEXT NOT NULL DEFAULT 'UTC',
    streak INTEGER NOT NULL DEFAULT 0,
    last_soulfuel_sent {{ts}},
    created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS habits (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'General',
    frequency TEXT NOT NULL DEFAULT 'Daily',
    times_per_day INTEGER NOT NULL DEFAULT 1,
    reminder_time TEXT,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_completed_date TEXT,
    created_at {{ts}} NOT NULL DEFAULT {{now}},
    CHECK (longest_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_habits_user ON habits(user_id);

CREATE TABLE IF NOT EXISTS completion_events (
    id TEXT PRIMARY KEY,
    habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT TRUE,
    created_at {{ts}} NOT NULL DEFAULT {{now}},
    UNIQUE (habit_id, user_id, day)
);

CREATE INDEX IF NOT EXISTS idx_completion_events_user_day ON completion_events(user_id, day);

CREATE TABLE IF NOT EXISTS goals (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    target_date TEXT,
    progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at {{ts}},
    created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE INDEX IF NOT EXISTS idx_goals_due ON goals(completed, target_date);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    related_id TEXT,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    sent_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_sent ON notifications(user_id, sent_at);

CREATE TABLE IF NOT EXISTS analytics (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day TEXT NOT NULL,
    habits_completed INTEGER NOT NULL DEFAULT 0,
    total_habits INTEGER NOT NULL DEFAULT 0,
    goals_completed INTEGER NOT NULL DEFAULT 0,
    total_goals INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    created_at {{ts}} NOT NULL DEFAULT {{now}},
    UNIQUE (user_id, day)
);

CREATE TABLE IF NOT EXISTS soulfuel_messages (
    id TEXT PRIMARY KEY,
    message TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'motivation',
    author TEXT NOT NULL DEFAULT 'SoulFuel Team',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at {{ts}} NOT NULL DEFAULT {{now}}
);

CREATE TABLE IF NOT EXISTS job_runs (
    job TEXT NOT NULL,
    day TEXT NOT NULL,
    started_at {{ts}} NOT NULL DEFAULT {{now}},
    PRIMARY KEY (job, day)
);
`

// RunMigrations creates the schema for the connection's dialect. It is idempotent.
func RunMigrations(db *sqlx.DB) error {
	_, err := db.ExecContext(context.Background(), schemaFor(db.DriverName()))
	return err
}

func schemaFor(driver string) string {
	r := strings.NewReplacer("{{ts}}", "TIMESTAMPTZ", "{{now}}", "NOW()")
	if driver == DriverSQLite {
		r = strings.NewReplacer("{{ts}}", "TIMESTAMP", "{{now}}", "CURRENT_TIMESTAMP")
	}
	return r.Replace(schema)
}
