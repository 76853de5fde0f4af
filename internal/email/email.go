package email

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"habitflow/internal/models"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email. Failures are reported as *models.EmailDeliveryError.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return &models.EmailDeliveryError{To: msg.To, Err: fmt.Errorf("invalid from address: %w", err)}
	}
	if err := m.To(msg.To); err != nil {
		return &models.EmailDeliveryError{To: msg.To, Err: fmt.Errorf("invalid recipient: %w", err)}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return &models.EmailDeliveryError{To: msg.To, Err: err}
	}
	return nil
}

// UnconfiguredSender stands in when no SMTP relay is configured. Every send fails with
// models.ErrEmailNotConfigured.
type UnconfiguredSender struct{}

func (UnconfiguredSender) Send(_ context.Context, msg Message) error {
	return &models.EmailDeliveryError{To: msg.To, Err: models.ErrEmailNotConfigured}
}
