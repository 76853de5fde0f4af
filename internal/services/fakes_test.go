package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"habitflow/internal/email"
	"habitflow/internal/models"
)

var errBoom = errors.New("boom")

type fakeNotifications struct {
	mu      sync.Mutex
	created []models.Notification
	failFor map[string]bool // user ids
}

func (f *fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[n.UserID] {
		return &models.RepositoryError{Op: "create notification", Err: errBoom}
	}
	n.ID = "n" + n.UserID
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifications) byUser(userID string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []email.Message
	err   error
	delay time.Duration
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return &models.EmailDeliveryError{To: msg.To, Err: ctx.Err()}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return &models.EmailDeliveryError{To: msg.To, Err: f.err}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeUsers struct {
	users       []models.User
	failFind    map[string]bool
	soulFuelAt  map[string]time.Time
	listErr     error
	streaks     map[string]int
	failMarking map[string]bool
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.failFind[id] {
		return nil, &models.RepositoryError{Op: "find user", Err: errBoom}
	}
	for _, u := range f.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUsers) All(context.Context) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeUsers) FindWithPreference(_ context.Context, pref models.Preference) ([]models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.User
	for _, u := range f.users {
		s := u.NotificationSettings
		if (pref == models.PreferenceEmail && s.Email) ||
			(pref == models.PreferenceReminders && s.Reminders) ||
			(pref == models.PreferenceSoulFuel && s.SoulFuel) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateStreak(_ context.Context, id string, streak int) error {
	if f.streaks == nil {
		f.streaks = map[string]int{}
	}
	f.streaks[id] = streak
	return nil
}

func (f *fakeUsers) MarkSoulFuelSent(_ context.Context, id string, at time.Time) error {
	if f.failMarking[id] {
		return errBoom
	}
	if f.soulFuelAt == nil {
		f.soulFuelAt = map[string]time.Time{}
	}
	f.soulFuelAt[id] = at
	return nil
}

type fakeHabits struct {
	byUser   map[string][]models.Habit
	failFor  map[string]bool
	countErr error
}

func (f *fakeHabits) FindByID(_ context.Context, id string) (*models.Habit, error) {
	for _, hs := range f.byUser {
		for _, h := range hs {
			if h.ID == id {
				h := h
				return &h, nil
			}
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeHabits) FindActiveByUser(_ context.Context, userID string) ([]models.Habit, error) {
	if f.failFor[userID] {
		return nil, &models.RepositoryError{Op: "list habits", Err: errBoom}
	}
	var out []models.Habit
	for _, h := range f.byUser[userID] {
		if h.Active {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHabits) Save(_ context.Context, h *models.Habit) error {
	hs := f.byUser[h.UserID]
	for i := range hs {
		if hs[i].ID == h.ID {
			hs[i] = *h
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeHabits) CountByUser(_ context.Context, userID string) (int, error) {
	if f.failFor[userID] {
		return 0, &models.RepositoryError{Op: "count habits", Err: errBoom}
	}
	return len(f.byUser[userID]), f.countErr
}

type fakeCompletions struct {
	events []models.CompletionEvent
}

func (f *fakeCompletions) Exists(_ context.Context, habitID, userID string, d models.Date) (bool, error) {
	for _, e := range f.events {
		if e.HabitID == habitID && e.UserID == userID && e.Day == d {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCompletions) Create(ctx context.Context, e *models.CompletionEvent) error {
	if ok, _ := f.Exists(ctx, e.HabitID, e.UserID, e.Day); ok {
		return models.ErrDuplicateEvent
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeCompletions) FindByUserAndDateRange(_ context.Context, userID string, from, to models.Date) ([]models.CompletionEvent, error) {
	var out []models.CompletionEvent
	for _, e := range f.events {
		if e.UserID == userID && !e.Day.Before(from) && !e.Day.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeGoals struct {
	goals   []models.Goal
	findErr error
}

func (f *fakeGoals) FindDueBefore(_ context.Context, d models.Date) ([]models.Goal, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Goal
	for _, g := range f.goals {
		if !g.Completed && g.TargetDate != nil && !g.TargetDate.After(d) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoals) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, g := range f.goals {
		if g.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeGoals) CountCompletedByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, g := range f.goals {
		if g.UserID == userID && g.Completed {
			n++
		}
	}
	return n, nil
}

type fakeAnalytics struct {
	snapshots []models.AnalyticsSnapshot
}

func (f *fakeAnalytics) Create(_ context.Context, a *models.AnalyticsSnapshot) error {
	for _, s := range f.snapshots {
		if s.UserID == a.UserID && s.Day == a.Day {
			return models.ErrSnapshotExists
		}
	}
	f.snapshots = append(f.snapshots, *a)
	return nil
}

type fakeMessages struct {
	pool  []models.Message
	err   error
	calls int
}

func (f *fakeMessages) SampleActive(_ context.Context, n int) ([]models.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pool) == 0 {
		return []models.Message{models.FallbackMessage}, nil
	}
	if n > len(f.pool) {
		n = len(f.pool)
	}
	return f.pool[:n], nil
}

func user(id string, settings models.NotificationSettings) models.User {
	return models.User{ID: id, Email: id + "@example.com", NotificationSettings: settings, Timezone: "UTC"}
}

func allOn() models.NotificationSettings { return models.DefaultNotificationSettings() }
