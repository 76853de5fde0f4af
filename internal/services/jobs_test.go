package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"habitflow/internal/models"
	"habitflow/internal/services"
)

type jobsFixture struct {
	users         *fakeUsers
	habits        *fakeHabits
	goals         *fakeGoals
	completions   *fakeCompletions
	analytics     *fakeAnalytics
	messages      *fakeMessages
	notifications *fakeNotifications
	sender        *fakeSender
	logs          *observer.ObservedLogs
	jobs          *services.Jobs
}

var fixedNow = time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC)

func newJobsFixture(users ...models.User) *jobsFixture {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	f := &jobsFixture{
		users:         &fakeUsers{users: users},
		habits:        &fakeHabits{byUser: map[string][]models.Habit{}},
		goals:         &fakeGoals{},
		completions:   &fakeCompletions{},
		analytics:     &fakeAnalytics{},
		messages:      &fakeMessages{},
		notifications: &fakeNotifications{},
		sender:        &fakeSender{},
		logs:          logs,
	}
	now := func() time.Time { return fixedNow }
	dispatcher := services.NewDispatcher(f.notifications, f.sender, log, services.WithClock(now))
	f.jobs = services.NewJobs(services.JobsConfig{
		Users:       f.users,
		Habits:      f.habits,
		Goals:       f.goals,
		Analytics:   f.analytics,
		Messages:    f.messages,
		Completions: f.completions,
		Evaluator:   services.NewReminderEvaluator(f.goals, f.completions, services.PolicyAllIncomplete),
		Dispatcher:  dispatcher,
		SampleSize:  3,
		Location:    time.UTC,
		Now:         now,
		Logger:      log,
	})
	return f
}

func TestSendSoulFuel(t *testing.T) {
	noEmail := allOn()
	noEmail.Email = false
	optedOut := allOn()
	optedOut.SoulFuel = false

	f := newJobsFixture(user("a", allOn()), user("b", noEmail), user("c", optedOut))
	f.messages.pool = []models.Message{
		{ID: "m1", Message: "one", Author: "x"},
		{ID: "m2", Message: "two", Author: "y"},
		{ID: "m3", Message: "three", Author: "z"},
		{ID: "m4", Message: "four", Author: "w"},
	}

	report, err := f.jobs.SendSoulFuel(context.Background())
	if err != nil {
		t.Fatalf("SendSoulFuel: %v", err)
	}
	if report.Processed != 2 || report.Notified != 2 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	for _, id := range []string{"a", "b"} {
		got := f.notifications.byUser(id)
		if len(got) != 3 {
			t.Errorf("user %s got %d notifications, want 3", id, len(got))
		}
		for _, n := range got {
			if n.Type != models.NotificationSoulFuel || n.Title != "Daily SoulFuel 💫" {
				t.Errorf("notification = %+v", n)
			}
		}
		if !f.users.soulFuelAt[id].Equal(fixedNow) {
			t.Errorf("user %s lastSoulFuelSent = %v", id, f.users.soulFuelAt[id])
		}
	}
	if len(f.notifications.byUser("c")) != 0 {
		t.Error("opted-out user received soulfuel")
	}
	// One combined email, only for the user with email enabled.
	if f.sender.count() != 1 || f.sender.sent[0].To != "a@example.com" {
		t.Errorf("emails = %+v", f.sender.sent)
	}
}

func TestSendSoulFuelEmptyPoolUsesFallback(t *testing.T) {
	f := newJobsFixture(user("a", allOn()))

	if _, err := f.jobs.SendSoulFuel(context.Background()); err != nil {
		t.Fatalf("SendSoulFuel: %v", err)
	}
	got := f.notifications.byUser("a")
	if len(got) != 1 || got[0].Message != models.FallbackMessage.Message || got[0].RelatedID != nil {
		t.Fatalf("notifications = %+v", got)
	}
}

func TestSendSoulFuelSamplesOncePerBatch(t *testing.T) {
	f := newJobsFixture(user("a", allOn()), user("b", allOn()), user("c", allOn()))
	f.messages.pool = []models.Message{
		{ID: "m1", Message: "one"},
		{ID: "m2", Message: "two"},
	}

	if _, err := f.jobs.SendSoulFuel(context.Background()); err != nil {
		t.Fatalf("SendSoulFuel: %v", err)
	}
	if f.messages.calls != 1 {
		t.Errorf("SampleActive called %d times, want 1", f.messages.calls)
	}
	want := f.notifications.byUser("a")
	for _, id := range []string{"b", "c"} {
		got := f.notifications.byUser(id)
		if len(got) != len(want) {
			t.Fatalf("user %s got %d messages, want %d", id, len(got), len(want))
		}
		for i := range got {
			if got[i].Message != want[i].Message {
				t.Errorf("user %s message %d = %q, want %q", id, i, got[i].Message, want[i].Message)
			}
		}
	}
}

func TestSendSoulFuelSampleFailureFailsJob(t *testing.T) {
	f := newJobsFixture(user("a", allOn()))
	f.messages.err = errBoom

	if _, err := f.jobs.SendSoulFuel(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want errBoom", err)
	}
	if len(f.notifications.byUser("a")) != 0 || f.users.soulFuelAt["a"] != (time.Time{}) {
		t.Error("user was marked despite no messages")
	}
}

func TestSendSoulFuelIsolatesFailures(t *testing.T) {
	f := newJobsFixture(user("a", allOn()), user("b", allOn()), user("c", allOn()))
	f.notifications.failFor = map[string]bool{"b": true}

	report, err := f.jobs.SendSoulFuel(context.Background())
	if err != nil {
		t.Fatalf("SendSoulFuel: %v", err)
	}
	if report.Failed != 1 || report.Notified != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(f.notifications.byUser("c")) == 0 {
		t.Error("user after the failing one was skipped")
	}
	failures := f.logs.FilterMessage("soulfuel delivery failed").All()
	if len(failures) != 1 || failures[0].ContextMap()["user_id"] != "b" {
		t.Errorf("failure logs = %+v", failures)
	}
}

func TestCheckRemindersGoals(t *testing.T) {
	noEmail := allOn()
	noEmail.Email = false
	f := newJobsFixture(user("a", allOn()), user("b", noEmail))
	f.goals.goals = []models.Goal{
		{ID: "g1", UserID: "a", Title: "Run 5k", TargetDate: dayPtr("2024-01-11")},
		{ID: "g2", UserID: "b", Title: "Read book", TargetDate: dayPtr("2024-01-09")},
		{ID: "g3", UserID: "a", Title: "Later", TargetDate: dayPtr("2024-01-20")},
	}

	if _, err := f.jobs.CheckReminders(context.Background()); err != nil {
		t.Fatalf("CheckReminders: %v", err)
	}

	got := f.notifications.byUser("a")
	if len(got) != 1 {
		t.Fatalf("user a notifications = %+v", got)
	}
	n := got[0]
	if n.Type != models.NotificationGoalDeadline || n.Title != "Goal Deadline Approaching 🎯" ||
		n.Message != `Your goal "Run 5k" is due soon!` || n.RelatedID == nil || *n.RelatedID != "g1" {
		t.Errorf("goal notification = %+v", n)
	}
	if len(f.notifications.byUser("b")) != 1 {
		t.Error("user b missing overdue goal reminder")
	}
	if f.sender.count() != 1 || f.sender.sent[0].Subject != "Goal Reminder: Run 5k" {
		t.Errorf("emails = %+v", f.sender.sent)
	}
}

func TestCheckRemindersHabits(t *testing.T) {
	remindersOff := allOn()
	remindersOff.Reminders = false
	f := newJobsFixture(
		user("idle", allOn()),
		user("partial", allOn()),
		user("nohabits", allOn()),
		user("off", remindersOff),
	)
	f.habits.byUser = map[string][]models.Habit{
		"idle":    {{ID: "h1", UserID: "idle", Active: true}, {ID: "h2", UserID: "idle", Active: true}},
		"partial": {{ID: "h3", UserID: "partial", Active: true}, {ID: "h4", UserID: "partial", Active: true}},
		"off":     {{ID: "h5", UserID: "off", Active: true}},
	}
	f.completions.events = []models.CompletionEvent{
		{HabitID: "h3", UserID: "partial", Day: day("2024-01-10"), Completed: true},
	}

	report, err := f.jobs.CheckReminders(context.Background())
	if err != nil {
		t.Fatalf("CheckReminders: %v", err)
	}
	if report.Notified != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v", report)
	}
	got := f.notifications.byUser("idle")
	if len(got) != 1 || got[0].Type != models.NotificationHabitReminder || got[0].RelatedID != nil {
		t.Fatalf("idle notifications = %+v", got)
	}
	for _, id := range []string{"partial", "nohabits", "off"} {
		if n := len(f.notifications.byUser(id)); n != 0 {
			t.Errorf("user %s got %d reminders", id, n)
		}
	}
}

func TestCheckRemindersIsolatesFailures(t *testing.T) {
	f := newJobsFixture(user("a", allOn()), user("b", allOn()), user("c", allOn()))
	for _, id := range []string{"a", "b", "c"} {
		f.habits.byUser[id] = []models.Habit{{ID: "h" + id, UserID: id, Active: true}}
	}
	f.habits.failFor = map[string]bool{"b": true}
	f.goals.goals = []models.Goal{
		{ID: "g-missing-owner", UserID: "ghost", Title: "x", TargetDate: dayPtr("2024-01-10")},
		{ID: "g-ok", UserID: "c", Title: "y", TargetDate: dayPtr("2024-01-10")},
	}

	report, err := f.jobs.CheckReminders(context.Background())
	if err != nil {
		t.Fatalf("CheckReminders: %v", err)
	}
	if report.Failed != 2 {
		t.Errorf("report = %+v, want 2 failures", report)
	}
	if n := len(f.notifications.byUser("c")); n != 2 {
		t.Errorf("user c got %d notifications, want goal + habit", n)
	}
	if n := len(f.notifications.byUser("a")); n != 1 {
		t.Errorf("user a got %d notifications, want 1", n)
	}
}

func TestCheckRemindersGoalLookupFailureStillRemindsHabits(t *testing.T) {
	f := newJobsFixture(user("a", allOn()))
	f.habits.byUser["a"] = []models.Habit{{ID: "h1", UserID: "a", Active: true}}
	f.goals.findErr = errBoom

	if _, err := f.jobs.CheckReminders(context.Background()); err != nil {
		t.Fatalf("CheckReminders: %v", err)
	}
	if len(f.notifications.byUser("a")) != 1 {
		t.Error("habit reminder not sent after goal lookup failure")
	}
}

func TestRecordAnalytics(t *testing.T) {
	a := user("a", allOn())
	a.Streak = 4
	f := newJobsFixture(a, user("b", allOn()))
	f.habits.byUser["a"] = []models.Habit{{ID: "h1", UserID: "a", Active: true}, {ID: "h2", UserID: "a", Active: false}}
	f.goals.goals = []models.Goal{{UserID: "a", Completed: true}, {UserID: "a"}}
	f.completions.events = []models.CompletionEvent{
		{HabitID: "h1", UserID: "a", Day: day("2024-01-10"), Completed: true},
		{HabitID: "h1", UserID: "a", Day: day("2024-01-09"), Completed: true},
	}

	report, err := f.jobs.RecordAnalytics(context.Background())
	if err != nil {
		t.Fatalf("RecordAnalytics: %v", err)
	}
	if report.Notified != 2 {
		t.Errorf("report = %+v", report)
	}
	var snap models.AnalyticsSnapshot
	for _, s := range f.analytics.snapshots {
		if s.UserID == "a" {
			snap = s
		}
	}
	want := models.AnalyticsSnapshot{UserID: "a", Day: day("2024-01-10"), HabitsCompleted: 1, TotalHabits: 2, GoalsCompleted: 1, TotalGoals: 2, CurrentStreak: 4}
	snap.CreatedAt = time.Time{}
	if snap != want {
		t.Errorf("snapshot = %+v, want %+v", snap, want)
	}

	// A second run the same day records nothing new.
	report, err = f.jobs.RecordAnalytics(context.Background())
	if err != nil {
		t.Fatalf("second RecordAnalytics: %v", err)
	}
	if report.Skipped != 2 || len(f.analytics.snapshots) != 2 {
		t.Errorf("second run report = %+v, snapshots = %d", report, len(f.analytics.snapshots))
	}
}

func TestRecordAnalyticsIsolatesFailures(t *testing.T) {
	f := newJobsFixture(user("a", allOn()), user("b", allOn()), user("c", allOn()))
	f.habits.failFor = map[string]bool{"b": true}

	report, err := f.jobs.RecordAnalytics(context.Background())
	if err != nil {
		t.Fatalf("RecordAnalytics: %v", err)
	}
	if report.Failed != 1 || len(f.analytics.snapshots) != 2 {
		t.Errorf("report = %+v, snapshots = %d", report, len(f.analytics.snapshots))
	}
}

func TestRunUnknownJob(t *testing.T) {
	f := newJobsFixture()
	if _, err := f.jobs.Run(context.Background(), "laundry"); !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("error = %v", err)
	}
	if _, err := f.jobs.Run(context.Background(), services.JobAnalytics); err != nil {
		t.Fatalf("Run analytics: %v", err)
	}
}

func TestJobsUseReferenceTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 19:00 UTC on the 10th is already the 11th in Tokyo.
	j := services.NewJobs(services.JobsConfig{Location: loc, Now: func() time.Time { return fixedNow }})
	if got := j.Today().String(); got != "2024-01-11" {
		t.Errorf("Today = %s, want 2024-01-11", got)
	}
}
