package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"habitflow/internal/email"
	"habitflow/internal/models"
)

// Dispatcher records in-app notifications and mirrors them to email when the user allows it.
type Dispatcher struct {
	notifications NotificationStore
	sender        email.Sender
	emailTimeout  time.Duration
	now           func() time.Time
	log           *zap.Logger
}

type DispatcherOption func(*Dispatcher)

// WithClock overrides the time source used for sentAt.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// WithEmailTimeout bounds each email send.
func WithEmailTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.emailTimeout = timeout }
}

func NewDispatcher(notifications NotificationStore, sender email.Sender, log *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if sender == nil {
		sender = email.UnconfiguredSender{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		notifications: notifications,
		sender:        sender,
		emailTimeout:  10 * time.Second,
		now:           time.Now,
		log:           log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notice is what gets dispatched to a user.
type Notice struct {
	Type      models.NotificationType
	Title     string
	Message   string
	RelatedID *string
	// Email is sent only when the user has email notifications enabled. Nil means no email.
	Email *email.Message
}

// Dispatch stores exactly one notification for user. A storage failure is returned; an email
// failure is logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, user models.User, n Notice) (*models.Notification, error) {
	rec, err := d.Record(ctx, user, n)
	if err != nil {
		return nil, err
	}
	if n.Email != nil && user.NotificationSettings.Email {
		d.SendEmail(ctx, *n.Email)
	}
	return rec, nil
}

// Record stores the notification without any email.
func (d *Dispatcher) Record(ctx context.Context, user models.User, n Notice) (*models.Notification, error) {
	if !n.Type.Valid() {
		return nil, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown notification type %q", n.Type)}
	}
	rec := &models.Notification{
		UserID:    user.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		RelatedID: n.RelatedID,
		IsRead:    false,
		SentAt:    d.now().UTC(),
	}
	if err := d.notifications.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store %s notification for %s: %w", n.Type, user.ID, err)
	}
	return rec, nil
}

// SendEmail sends msg under its own timeout. It reports whether delivery succeeded.
func (d *Dispatcher) SendEmail(ctx context.Context, msg email.Message) bool {
	sendCtx, cancel := context.WithTimeout(ctx, d.emailTimeout)
	defer cancel()

	err := d.sender.Send(sendCtx, msg)
	if err == nil && sendCtx.Err() != nil {
		err = &models.EmailDeliveryError{To: msg.To, Err: sendCtx.Err()}
	}
	if err != nil {
		d.log.Warn("email delivery failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return false
	}
	return true
}
