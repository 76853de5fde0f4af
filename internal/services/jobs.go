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

// Job names, also used for the once-per-day claim and the admin trigger.
const (
	JobSoulFuel  = "soulfuel"
	JobReminders = "reminders"
	JobAnalytics = "analytics"
)

// JobReport summarizes one batch run.
type JobReport struct {
	Job       string `json:"job"`
	Day       string `json:"day"`
	Processed int    `json:"processed"`
	Notified  int    `json:"notified"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// Jobs holds the three daily batch jobs. A failure for one user or goal is logged and the
// batch moves on.
type Jobs struct {
	users       UserDirectory
	habits      HabitRepository
	goals       GoalRepository
	analytics   AnalyticsStore
	messages    MessagePool
	evaluator   *ReminderEvaluator
	dispatcher  *Dispatcher
	completions CompletionEventStore
	sampleSize  int
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

type JobsConfig struct {
	Users       UserDirectory
	Habits      HabitRepository
	Goals       GoalRepository
	Analytics   AnalyticsStore
	Messages    MessagePool
	Completions CompletionEventStore
	Evaluator   *ReminderEvaluator
	Dispatcher  *Dispatcher
	SampleSize  int
	Location    *time.Location
	Now         func() time.Time
	Logger      *zap.Logger
}

func NewJobs(cfg JobsConfig) *Jobs {
	j := &Jobs{
		users:       cfg.Users,
		habits:      cfg.Habits,
		goals:       cfg.Goals,
		analytics:   cfg.Analytics,
		messages:    cfg.Messages,
		completions: cfg.Completions,
		evaluator:   cfg.Evaluator,
		dispatcher:  cfg.Dispatcher,
		sampleSize:  cfg.SampleSize,
		loc:         cfg.Location,
		now:         cfg.Now,
		log:         cfg.Logger,
	}
	if j.sampleSize <= 0 {
		j.sampleSize = 3
	}
	if j.loc == nil {
		j.loc = time.UTC
	}
	if j.now == nil {
		j.now = time.Now
	}
	if j.log == nil {
		j.log = zap.NewNop()
	}
	return j
}

// Today is the current calendar day in the reference timezone.
func (j *Jobs) Today() models.Date {
	return models.Today(j.now(), j.loc)
}

// Run executes the named job.
func (j *Jobs) Run(ctx context.Context, name string) (JobReport, error) {
	switch name {
	case JobSoulFuel:
		return j.SendSoulFuel(ctx)
	case JobReminders:
		return j.CheckReminders(ctx)
	case JobAnalytics:
		return j.RecordAnalytics(ctx)
	}
	return JobReport{}, &models.ValidationError{Field: "job", Message: fmt.Sprintf("unknown job %q", name)}
}

// Names lists the jobs Run accepts.
func (j *Jobs) Names() []string {
	return []string{JobSoulFuel, JobReminders, JobAnalytics}
}

// SendSoulFuel delivers a sample of motivational messages to every user who opted in.
func (j *Jobs) SendSoulFuel(ctx context.Context) (JobReport, error) {
	report := JobReport{Job: JobSoulFuel, Day: j.Today().String()}
	log := j.log.With(zap.String("job", JobSoulFuel))
	log.Info("job started")

	users, err := j.users.FindWithPreference(ctx, models.PreferenceSoulFuel)
	if err != nil {
		return report, fmt.Errorf("list soulfuel users: %w", err)
	}
	if len(users) == 0 {
		log.Info("job finished", zap.Int("users", 0))
		return report, nil
	}

	// Everyone gets the same sample for the day.
	msgs, err := j.messages.SampleActive(ctx, j.sampleSize)
	if err != nil {
		return report, fmt.Errorf("sample messages: %w", err)
	}
	if len(msgs) == 0 {
		msgs = []models.Message{models.FallbackMessage}
	}

	for _, u := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++
		if err := j.soulFuelFor(ctx, u, msgs); err != nil {
			report.Failed++
			log.Error("soulfuel delivery failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		report.Notified++
	}

	log.Info("job finished", zap.Int("users", report.Processed), zap.Int("delivered", report.Notified), zap.Int("failed", report.Failed))
	return report, nil
}

func (j *Jobs) soulFuelFor(ctx context.Context, u models.User, msgs []models.Message) error {
	for _, m := range msgs {
		var related *string
		if m.ID != "" {
			id := m.ID
			related = &id
		}
		if _, err := j.dispatcher.Record(ctx, u, Notice{
			Type:      models.NotificationSoulFuel,
			Title:     "Daily SoulFuel 💫",
			Message:   m.Message,
			RelatedID: related,
		}); err != nil {
			return err
		}
	}

	if u.NotificationSettings.Email {
		j.dispatcher.SendEmail(ctx, email.SoulFuel(u.Email, msgs))
	}

	if err := j.users.MarkSoulFuelSent(ctx, u.ID, j.now()); err != nil {
		return fmt.Errorf("mark soulfuel sent: %w", err)
	}
	return nil
}

// CheckReminders sends goal deadline reminders and then daily habit reminders.
func (j *Jobs) CheckReminders(ctx context.Context) (JobReport, error) {
	today := j.Today()
	report := JobReport{Job: JobReminders, Day: today.String()}
	log := j.log.With(zap.String("job", JobReminders), zap.String("day", today.String()))
	log.Info("job started")

	goals, err := j.evaluator.GoalsDue(ctx, today)
	if err != nil {
		// Habit reminders do not depend on goals, so keep going.
		log.Error("goal lookup failed", zap.Error(err))
		report.Failed++
	}

	owners := make(map[string]*models.User)
	for _, g := range goals {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++
		if err := j.remindGoal(ctx, g, owners); err != nil {
			report.Failed++
			log.Error("goal reminder failed", zap.String("goal_id", g.ID), zap.String("user_id", g.UserID), zap.Error(err))
			continue
		}
		report.Notified++
	}

	users, err := j.users.FindWithPreference(ctx, models.PreferenceReminders)
	if err != nil {
		return report, fmt.Errorf("list reminder users: %w", err)
	}
	for _, u := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++
		sent, err := j.remindHabits(ctx, u, today)
		if err != nil {
			report.Failed++
			log.Error("habit reminder failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		if sent {
			report.Notified++
		} else {
			report.Skipped++
		}
	}

	log.Info("job finished",
		zap.Int("due_goals", len(goals)),
		zap.Int("users", len(users)),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (j *Jobs) remindGoal(ctx context.Context, g models.Goal, owners map[string]*models.User) error {
	owner, ok := owners[g.UserID]
	if !ok {
		u, err := j.users.FindByID(ctx, g.UserID)
		if err != nil {
			return fmt.Errorf("load goal owner: %w", err)
		}
		owners[g.UserID] = u
		owner = u
	}

	related := g.ID
	msg := email.GoalReminder(owner.Email, g)
	_, err := j.dispatcher.Dispatch(ctx, *owner, Notice{
		Type:      models.NotificationGoalDeadline,
		Title:     "Goal Deadline Approaching 🎯",
		Message:   fmt.Sprintf("Your goal %q is due soon!", g.Title),
		RelatedID: &related,
		Email:     &msg,
	})
	return err
}

func (j *Jobs) remindHabits(ctx context.Context, u models.User, today models.Date) (bool, error) {
	habits, err := j.habits.FindActiveByUser(ctx, u.ID)
	if err != nil {
		return false, fmt.Errorf("load active habits: %w", err)
	}
	needed, err := j.evaluator.HabitReminderNeeded(ctx, u, habits, today)
	if err != nil || !needed {
		return false, err
	}

	msg := email.HabitReminder(u.Email, u.Streak)
	if _, err := j.dispatcher.Dispatch(ctx, u, Notice{
		Type:    models.NotificationHabitReminder,
		Title:   "Habit Reminder 🔔",
		Message: "Don't forget to complete your habits today!",
		Email:   &msg,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// RecordAnalytics writes one snapshot per user for today.
func (j *Jobs) RecordAnalytics(ctx context.Context) (JobReport, error) {
	today := j.Today()
	report := JobReport{Job: JobAnalytics, Day: today.String()}
	log := j.log.With(zap.String("job", JobAnalytics), zap.String("day", today.String()))
	log.Info("job started")

	users, err := j.users.All(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Processed++
		err := j.snapshotFor(ctx, u, today)
		switch {
		case errors.Is(err, models.ErrSnapshotExists):
			report.Skipped++
			log.Debug("snapshot already recorded", zap.String("user_id", u.ID))
		case err != nil:
			report.Failed++
			log.Error("analytics snapshot failed", zap.String("user_id", u.ID), zap.Error(err))
		default:
			report.Notified++
		}
	}

	log.Info("job finished", zap.Int("users", report.Processed), zap.Int("recorded", report.Notified), zap.Int("failed", report.Failed))
	return report, nil
}

func (j *Jobs) snapshotFor(ctx context.Context, u models.User, today models.Date) error {
	totalHabits, err := j.habits.CountByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	totalGoals, err := j.goals.CountByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	goalsCompleted, err := j.goals.CountCompletedByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	events, err := j.completions.FindByUserAndDateRange(ctx, u.ID, today, today)
	if err != nil {
		return err
	}
	habitsCompleted := 0
	for _, e := range events {
		if e.Completed {
			habitsCompleted++
		}
	}

	return j.analytics.Create(ctx, &models.AnalyticsSnapshot{
		UserID:          u.ID,
		Day:             today,
		HabitsCompleted: habitsCompleted,
		TotalHabits:     totalHabits,
		GoalsCompleted:  goalsCompleted,
		TotalGoals:      totalGoals,
		CurrentStreak:   u.Streak,
		CreatedAt:       j.now().UTC(),
	})
}
