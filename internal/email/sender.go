package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It backs
// development environments without SES credentials.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	log.Ctx(ctx).Info().
		Str("recipient", msg.To).
		Str("subject", msg.Subject).
		Str("reply_to", msg.ReplyTo).
		Str("body", msg.Body).
		Msg("Email not delivered: SES not configured")
	return nil
}
