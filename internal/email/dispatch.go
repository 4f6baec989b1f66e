package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	sendTimeout  = 10 * time.Second
	asyncTimeout = 5 * time.Second
)

// Dispatcher sends the league's transactional emails through an EmailSender.
// Sends are synchronous unless the method says otherwise; callers decide
// whether to surface or swallow the returned error.
type Dispatcher struct {
	sender         EmailSender
	appName        string
	baseURL        string
	contactAddress string
}

func NewDispatcher(sender EmailSender, appName, baseURL, contactAddress string) *Dispatcher {
	if sender == nil {
		sender = LogSender{}
	}
	return &Dispatcher{
		sender:         sender,
		appName:        appName,
		baseURL:        strings.TrimRight(baseURL, "/"),
		contactAddress: strings.TrimSpace(contactAddress),
	}
}

// URL resolves path against the configured base URL.
func (d *Dispatcher) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return d.baseURL + path
}

func (d *Dispatcher) SendVerification(ctx context.Context, to, firstName, link string, expiresAt time.Time) error {
	msg := BuildVerificationEmail(to, VerificationDetails{
		AppName:   d.appName,
		FirstName: firstName,
		Link:      link,
		ExpiresAt: expiresAt,
	})
	return d.send(ctx, msg)
}

func (d *Dispatcher) SendWelcome(ctx context.Context, to, firstName string) error {
	msg := BuildWelcomeEmail(to, WelcomeDetails{
		AppName:   d.appName,
		FirstName: firstName,
		LoginURL:  d.URL("/auth/signin"),
	})
	return d.send(ctx, msg)
}

func (d *Dispatcher) RelayContact(ctx context.Context, from, subject, message string) error {
	if d.contactAddress == "" {
		return fmt.Errorf("contact address is not configured")
	}
	msg := BuildContactEmail(d.contactAddress, ContactDetails{
		AppName: d.appName,
		From:    from,
		Subject: subject,
		Message: message,
	})
	return d.send(ctx, msg)
}

// NotifyMatchReported sends asynchronously; failures are only logged.
func (d *Dispatcher) NotifyMatchReported(ctx context.Context, to string, details MatchReportedDetails) {
	if strings.TrimSpace(to) == "" {
		return
	}
	details.AppName = d.appName
	if details.ConfirmURL == "" {
		details.ConfirmURL = d.URL("/dashboard")
	}
	msg := BuildMatchReportedEmail(to, details)
	logger := log.Ctx(ctx).With().Str("recipient", to).Logger()

	sendCtx, cancel := newEmailContext(ctx, asyncTimeout)
	go func() {
		defer cancel()
		if err := d.sender.Send(sendCtx, msg); err != nil {
			logger.Error().Err(err).Msg("Failed to send match reported email")
		}
	}()
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := d.sender.Send(sendCtx, msg); err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	return nil
}
