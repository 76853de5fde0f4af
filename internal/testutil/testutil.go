package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"habitflow/internal/db"
	"habitflow/internal/models"
	"habitflow/internal/repository"
)

// NewTestDatabase returns a migrated in-memory sqlite database closed at test cleanup.
func NewTestDatabase(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open("", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := db.RunMigrations(conn); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	return conn
}

// CreateUser inserts a user with every notification setting enabled.
func CreateUser(t *testing.T, conn *sqlx.DB, email string) *models.User {
	t.Helper()

	u := &models.User{
		Email:                email,
		Name:                 email,
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	if err := repository.NewUserRepository(conn).Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return u
}

// CreateHabit inserts an active habit owned by userID.
func CreateHabit(t *testing.T, conn *sqlx.DB, userID, name string) *models.Habit {
	t.Helper()

	h := &models.Habit{UserID: userID, Name: name, Active: true}
	if err := repository.NewHabitRepository(conn).Create(context.Background(), h); err != nil {
		t.Fatalf("creating habit %s: %v", name, err)
	}
	return h
}
