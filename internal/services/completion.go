package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"habitflow/internal/email"
	"habitflow/internal/models"
)

// Milestones are the streak lengths that earn a streak_milestone notification.
var Milestones = []int{7, 21, 30, 50, 100, 365}

func isMilestone(n int) bool {
	for _, m := range Milestones {
		if m == n {
			return true
		}
	}
	return false
}

// CompletionResult describes the outcome of marking a habit done.
type CompletionResult struct {
	Habit     models.Habit `json:"habit"`
	Day       models.Date  `json:"day"`
	Duplicate bool         `json:"duplicate"`
	Milestone int          `json:"milestone,omitempty"`
}

type CompletionService struct {
	habits      HabitRepository
	completions CompletionEventStore
	users       UserDirectory
	dispatcher  *Dispatcher
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

func NewCompletionService(habits HabitRepository, completions CompletionEventStore, users UserDirectory,
	dispatcher *Dispatcher, loc *time.Location, log *zap.Logger) *CompletionService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CompletionService{
		habits:      habits,
		completions: completions,
		users:       users,
		dispatcher:  dispatcher,
		loc:         loc,
		now:         time.Now,
		log:         log,
	}
}

// SetClock overrides the time source used to pick today's calendar day.
func (s *CompletionService) SetClock(now func() time.Time) { s.now = now }

// CompleteToday records that userID completed habitID today in the reference timezone.
func (s *CompletionService) CompleteToday(ctx context.Context, userID, habitID string) (*CompletionResult, error) {
	return s.Complete(ctx, userID, habitID, models.Today(s.now(), s.loc))
}

// Complete records a completion of habitID by userID on day and advances the habit's streak.
// Completing the same day twice is a successful no-op reported as Duplicate.
func (s *CompletionService) Complete(ctx context.Context, userID, habitID string, day models.Date) (*CompletionResult, error) {
	habit, err := s.habits.FindByID(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("load habit %s: %w", habitID, err)
	}
	if habit.UserID != userID {
		return nil, models.ErrNotFound
	}
	if !habit.Active {
		return nil, &models.ValidationError{Field: "habit", Message: "habit is not active"}
	}

	// Out-of-order days are rejected before anything is written.
	next, err := RecordCompletion(StateOf(*habit), day)
	if err != nil {
		return nil, err
	}

	event := &models.CompletionEvent{
		HabitID:   habit.ID,
		UserID:    userID,
		Day:       day,
		Completed: true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.completions.Create(ctx, event); err != nil {
		if !errors.Is(err, models.ErrDuplicateEvent) {
			return nil, fmt.Errorf("record completion: %w", err)
		}
		if !streakBehind(*habit, day) {
			return &CompletionResult{Habit: *habit, Day: day, Duplicate: true}, nil
		}
		// The event landed but the habit save did not; finish applying it now.
		s.log.Info("repairing habit streak for recorded completion",
			zap.String("habit_id", habit.ID), zap.String("day", day.String()))
	}

	before := habit.CurrentStreak
	next.ApplyTo(habit)
	if err := s.habits.Save(ctx, habit); err != nil {
		return nil, fmt.Errorf("save habit %s: %w", habit.ID, err)
	}

	res := &CompletionResult{Habit: *habit, Day: day}
	if habit.CurrentStreak != before && isMilestone(habit.CurrentStreak) {
		res.Milestone = habit.CurrentStreak
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		// The completion is already durable; the mirror and milestone can wait for the next one.
		s.log.Warn("load user after completion", zap.String("user_id", userID), zap.Error(err))
		return res, nil
	}
	s.syncUserStreak(ctx, *user)
	if res.Milestone > 0 {
		s.notifyMilestone(ctx, *user, *habit, res.Milestone)
	}
	return res, nil
}

// streakBehind reports whether habit's stored streak predates day.
func streakBehind(habit models.Habit, day models.Date) bool {
	return habit.LastCompletedDate == nil || day.After(*habit.LastCompletedDate)
}

// syncUserStreak mirrors the best current streak across active habits onto the user.
func (s *CompletionService) syncUserStreak(ctx context.Context, user models.User) {
	habits, err := s.habits.FindActiveByUser(ctx, user.ID)
	if err != nil {
		s.log.Warn("load habits for user streak", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	best := 0
	for _, h := range habits {
		if h.CurrentStreak > best {
			best = h.CurrentStreak
		}
	}
	if best == user.Streak {
		return
	}
	if err := s.users.UpdateStreak(ctx, user.ID, best); err != nil {
		s.log.Warn("update user streak", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (s *CompletionService) notifyMilestone(ctx context.Context, user models.User, habit models.Habit, days int) {
	if s.dispatcher == nil {
		return
	}
	related := habit.ID
	msg := email.StreakMilestone(user.Email, habit.Name, days)
	_, err := s.dispatcher.Dispatch(ctx, user, Notice{
		Type:      models.NotificationStreakMilestone,
		Title:     fmt.Sprintf("%d-Day Streak 🏆", days),
		Message:   fmt.Sprintf("You completed %q %d days in a row!", habit.Name, days),
		RelatedID: &related,
		Email:     &msg,
	})
	if err != nil {
		s.log.Warn("dispatch streak milestone",
			zap.String("user_id", user.ID),
			zap.String("habit_id", habit.ID),
			zap.Int("streak", days),
			zap.Error(err),
		)
	}
}
