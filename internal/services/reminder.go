package services

import (
	"context"
	"fmt"

	"habitflow/internal/models"
)

// ReminderPolicy decides when a user with unfinished habits gets a daily reminder.
type ReminderPolicy string

const (
	// PolicyAllIncomplete reminds only when none of the active habits is done.
	PolicyAllIncomplete ReminderPolicy = "all_incomplete"
	// PolicyAnyIncomplete reminds when at least one active habit is not done.
	PolicyAnyIncomplete ReminderPolicy = "any_incomplete"
)

func ParseReminderPolicy(s string) (ReminderPolicy, error) {
	switch p := ReminderPolicy(s); p {
	case PolicyAllIncomplete, PolicyAnyIncomplete:
		return p, nil
	case "":
		return PolicyAllIncomplete, nil
	}
	return "", &models.ValidationError{Field: "reminder_policy", Message: fmt.Sprintf("unknown policy %q", s)}
}

// ReminderEvaluator answers which goals are due and which users need a habit reminder.
type ReminderEvaluator struct {
	goals       GoalRepository
	completions CompletionEventStore
	policy      ReminderPolicy
}

func NewReminderEvaluator(goals GoalRepository, completions CompletionEventStore, policy ReminderPolicy) *ReminderEvaluator {
	if policy == "" {
		policy = PolicyAllIncomplete
	}
	return &ReminderEvaluator{goals: goals, completions: completions, policy: policy}
}

func (e *ReminderEvaluator) Policy() ReminderPolicy { return e.policy }

// GoalsDue returns every incomplete goal whose target date is no later than the day after asOf.
func (e *ReminderEvaluator) GoalsDue(ctx context.Context, asOf models.Date) ([]models.Goal, error) {
	goals, err := e.goals.FindDueBefore(ctx, asOf.AddDays(1))
	if err != nil {
		return nil, fmt.Errorf("find due goals: %w", err)
	}
	return goals, nil
}

// HabitReminderNeeded reports whether user should be reminded about activeHabits on asOf.
// A user without active habits is never reminded.
func (e *ReminderEvaluator) HabitReminderNeeded(ctx context.Context, user models.User, activeHabits []models.Habit, asOf models.Date) (bool, error) {
	if len(activeHabits) == 0 {
		return false, nil
	}

	events, err := e.completions.FindByUserAndDateRange(ctx, user.ID, asOf, asOf)
	if err != nil {
		return false, fmt.Errorf("load completions for %s: %w", user.ID, err)
	}
	done := make(map[string]bool, len(events))
	for _, ev := range events {
		if ev.Completed {
			done[ev.HabitID] = true
		}
	}

	incomplete := 0
	for _, h := range activeHabits {
		if !done[h.ID] {
			incomplete++
		}
	}
	return e.policy.remind(incomplete, len(activeHabits)), nil
}

func (p ReminderPolicy) remind(incomplete, total int) bool {
	if p == PolicyAnyIncomplete {
		return incomplete > 0
	}
	return incomplete > 0 && incomplete == total
}
