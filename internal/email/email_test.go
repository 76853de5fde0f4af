package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"habitflow/internal/models"
)

func TestUnconfiguredSenderFails(t *testing.T) {
	err := UnconfiguredSender{}.Send(context.Background(), Message{To: "a@example.com"})
	if !errors.Is(err, models.ErrEmailDelivery) {
		t.Fatalf("error = %v, want ErrEmailDelivery", err)
	}
	if !errors.Is(err, models.ErrEmailNotConfigured) {
		t.Fatalf("error = %v, want ErrEmailNotConfigured", err)
	}
	var de *models.EmailDeliveryError
	if !errors.As(err, &de) || de.To != "a@example.com" {
		t.Fatalf("delivery error = %#v", err)
	}
}

func TestSMTPSenderRejectsBadRecipient(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, From: "no-reply@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}
	err = s.Send(context.Background(), Message{To: "not an address", Subject: "x", Text: "y"})
	if !errors.Is(err, models.ErrEmailDelivery) {
		t.Fatalf("error = %v, want ErrEmailDelivery", err)
	}
}

func TestTemplates(t *testing.T) {
	due := models.MustParseDate("2024-06-01")
	tests := []struct {
		name        string
		msg         Message
		wantSubject string
		wantHTML    string
	}{
		{
			name:        "goal",
			msg:         GoalReminder("a@example.com", models.Goal{Title: "Run <5k>", TargetDate: &due}),
			wantSubject: "Goal Reminder: Run <5k>",
			wantHTML:    "Run &lt;5k&gt;",
		},
		{
			name:        "habit",
			msg:         HabitReminder("a@example.com", 12),
			wantSubject: "Daily Habit Reminder",
			wantHTML:    "12-day streak",
		},
		{
			name: "soulfuel",
			msg: SoulFuel("a@example.com", []models.Message{
				{Message: "Breathe", Author: "Ana"},
				{Message: "Move", Author: "SoulFuel Team"},
			}),
			wantSubject: "Your Daily SoulFuel 💫",
			wantHTML:    "Breathe",
		},
		{
			name:        "milestone",
			msg:         StreakMilestone("a@example.com", "Read", 7),
			wantSubject: "7-day streak on Read",
			wantHTML:    "7 days in a row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.msg.Subject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", tt.msg.Subject, tt.wantSubject)
			}
			if !strings.Contains(tt.msg.HTML, tt.wantHTML) {
				t.Errorf("html missing %q:\n%s", tt.wantHTML, tt.msg.HTML)
			}
			if tt.msg.Text == "" {
				t.Error("text body is empty")
			}
		})
	}
}
