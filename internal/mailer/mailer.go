// Package mailer sends transactional mail. SendGrid in production, a
// console writer in dev; send failures are best-effort and never block
// the calling operation.
package mailer

import (
	"context"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Sendgrid delivers through the SendGrid v3 API.
type Sendgrid struct {
	client   *sendgrid.Client
	from     *sgmail.Email
	subjPref string
}

// NewSendgrid creates a SendGrid mailer.
func NewSendgrid(apiKey, fromName, fromAddr string) *Sendgrid {
	return &Sendgrid{
		client:   sendgrid.NewSendClient(apiKey),
		from:     sgmail.NewEmail(fromName, fromAddr),
		subjPref: "[Rollcall] ",
	}
}

// Send delivers one message.
func (s *Sendgrid) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail("", msg.To)
	m := sgmail.NewSingleEmail(s.from, s.subjPref+msg.Subject, to, msg.Body, msg.Body)
	_, err := s.client.SendWithContext(ctx, m)
	return err
}

// Console logs messages instead of sending them. Used when SendGrid is
// not configured.
type Console struct {
	logger *slog.Logger
}

// NewConsole creates a console mailer.
func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

// Send logs the message.
func (c *Console) Send(_ context.Context, msg Message) error {
	c.logger.Info("mail (console)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
