package models

import "time"

// NotificationType is the kind of an in-app notification.
type NotificationType string

const (
	NotificationHabitReminder   NotificationType = "habit_reminder"
	NotificationGoalDeadline    NotificationType = "goal_deadline"
	NotificationSoulFuel        NotificationType = "soulfuel"
	NotificationStreakMilestone NotificationType = "streak_milestone"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationHabitReminder, NotificationGoalDeadline, NotificationSoulFuel, NotificationStreakMilestone:
		return true
	}
	return false
}

// Preference names a per-channel notification setting on a user.
type Preference string

const (
	PreferenceEmail     Preference = "email"
	PreferenceReminders Preference = "reminders"
	PreferenceSoulFuel  Preference = "soulfuel"
)

type NotificationSettings struct {
	Email     bool `db:"notify_email" json:"email"`
	Reminders bool `db:"notify_reminders" json:"reminders"`
	SoulFuel  bool `db:"notify_soulfuel" json:"soulfuel"`
}

// DefaultNotificationSettings matches what a freshly registered user gets.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Email: true, Reminders: true, SoulFuel: true}
}

type User struct {
	ID                   string     `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	Name                 string     `db:"name" json:"name"`
	NotificationSettings `json:"notification_settings"`
	Timezone             string     `db:"timezone" json:"timezone"`
	Streak               int        `db:"streak" json:"streak"`
	LastSoulFuelSent     *time.Time `db:"last_soulfuel_sent" json:"last_soulfuel_sent,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

type Habit struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	Name              string    `db:"name" json:"name"`
	Category          string    `db:"category" json:"category"`
	Frequency         string    `db:"frequency" json:"frequency"`
	TimesPerDay       int       `db:"times_per_day" json:"times_per_day"`
	ReminderTime      *string   `db:"reminder_time" json:"reminder_time,omitempty"` // HH:MM
	Active            bool      `db:"active" json:"active"`
	CurrentStreak     int       `db:"current_streak" json:"current_streak"`
	LongestStreak     int       `db:"longest_streak" json:"longest_streak"`
	LastCompletedDate *Date     `db:"last_completed_date" json:"last_completed_date,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// CompletionEvent records that a habit was (or was not) done on one calendar day.
type CompletionEvent struct {
	ID        string    `db:"id" json:"id"`
	HabitID   string    `db:"habit_id" json:"habit_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Day       Date      `db:"day" json:"day"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	TargetDate  *Date      `db:"target_date" json:"target_date,omitempty"`
	Progress    int        `db:"progress" json:"progress"` // percentage
	Completed   bool       `db:"completed" json:"completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	RelatedID *string          `db:"related_id" json:"related_id,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	SentAt    time.Time        `db:"sent_at" json:"sent_at"`
}

// AnalyticsSnapshot is the per-user daily roll-up written by the analytics job.
type AnalyticsSnapshot struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Day             Date      `db:"day" json:"day"`
	HabitsCompleted int       `db:"habits_completed" json:"habits_completed"`
	TotalHabits     int       `db:"total_habits" json:"total_habits"`
	GoalsCompleted  int       `db:"goals_completed" json:"goals_completed"`
	TotalGoals      int       `db:"total_goals" json:"total_goals"`
	CurrentStreak   int       `db:"current_streak" json:"current_streak"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Message is an entry of the motivational (SoulFuel) pool.
type Message struct {
	ID        string    `db:"id" json:"id"`
	Message   string    `db:"message" json:"message"`
	Category  string    `db:"category" json:"category"`
	Author    string    `db:"author" json:"author"`
	Active    bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const DefaultMessageAuthor = "SoulFuel Team"

// FallbackMessage is handed out when the pool has no active messages.
var FallbackMessage = Message{
	Message:  "Every small step counts. Keep moving forward!",
	Category: "motivation",
	Author:   DefaultMessageAuthor,
	Active:   true,
}
