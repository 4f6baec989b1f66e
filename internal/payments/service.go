// Package payments turns payment provider events into account activation and
// exposes the registration price.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/codr1/golfleague/internal/apperr"
	appdb "github.com/codr1/golfleague/internal/db"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/models"
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	metadataUserID         = "userId"
	priceLookupTimeout     = 5 * time.Second
)

var (
	ErrInvalidSignature = apperr.Validation("Invalid signature")
	ErrNotConfigured    = apperr.Upstream("Payments are not configured", nil)

	errDuplicateEvent = errors.New("payment event already processed")
)

type PriceSource string

const (
	PriceSourceProvider PriceSource = "provider"
	PriceSourceConfig   PriceSource = "config"
)

// Price is the registration fee.
type Price struct {
	AmountCents int64       `json:"amount"`
	Currency    string      `json:"currency"`
	Formatted   string      `json:"formatted"`
	Source      PriceSource `json:"source"`
}

// WelcomeMailer sends the post-payment welcome message. *email.Dispatcher
// satisfies it.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, firstName string) error
}

type Config struct {
	WebhookSecret    string
	PriceID          string
	FallbackCents    int64
	FallbackCurrency string
	SuccessURL       string
	CancelURL        string
}

type Service struct {
	db      *appdb.DB
	gateway Gateway
	mailer  WelcomeMailer
	cfg     Config
	now     func() time.Time
}

func NewService(database *appdb.DB, gateway Gateway, mailer WelcomeMailer, cfg Config) *Service {
	if cfg.FallbackCurrency == "" {
		cfg.FallbackCurrency = "eur"
	}
	return &Service{
		db:      database,
		gateway: gateway,
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WebhookResult describes what a delivered event did.
type WebhookResult struct {
	EventID   string
	EventType string
	Duplicate bool
	Ignored   bool
	UserID    int64
}

// HandleWebhook verifies and applies one provider event. A bad signature
// yields ErrInvalidSignature without touching the store. Events already
// recorded are acknowledged as duplicates with no side effects.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if s.cfg.WebhookSecret == "" {
		return WebhookResult{}, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Rejected payment webhook signature")
		return WebhookResult{}, ErrInvalidSignature
	}

	result := WebhookResult{EventID: event.ID, EventType: string(event.Type)}
	if string(event.Type) != eventCheckoutCompleted {
		result.Ignored = true
		return result, nil
	}

	var session stripe.CheckoutSession
	if event.Data == nil {
		return result, apperr.Validation("event has no data")
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return result, apperr.Wrap(apperr.KindValidation, "event data is not a checkout session", err)
	}

	userID, err := userIDFromSession(&session)
	if err != nil {
		// Nothing to activate; acknowledge so the provider stops retrying.
		log.Ctx(ctx).Warn().Err(err).Str("event_id", event.ID).Msg("Checkout session without user reference")
		result.Ignored = true
		return result, nil
	}
	result.UserID = userID

	var user dbgen.User
	err = s.db.RunInTx(ctx, func(tx *appdb.DB) error {
		if err := tx.Queries.InsertProcessedPaymentEvent(ctx, dbgen.InsertProcessedPaymentEventParams{
			EventID:   event.ID,
			EventType: string(event.Type),
		}); err != nil {
			if appdb.IsUniqueViolation(err) {
				return errDuplicateEvent
			}
			return fmt.Errorf("record payment event: %w", err)
		}

		updated, err := tx.Queries.ActivateUserPayment(ctx, dbgen.ActivateUserPaymentParams{
			PaidAt: s.now().UTC(),
			ID:     userID,
		})
		if err != nil {
			return fmt.Errorf("activate user %d: %w", userID, err)
		}
		if updated == 0 {
			return fmt.Errorf("activate user %d: user not found", userID)
		}

		user, err = tx.Queries.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load user %d: %w", userID, err)
		}
		return nil
	})
	if errors.Is(err, errDuplicateEvent) {
		result.Duplicate = true
		return result, nil
	}
	if err != nil {
		return result, err
	}

	log.Ctx(ctx).Info().Int64("user_id", userID).Str("event_id", event.ID).Msg("Payment completed, user activated")

	recipient := customerEmail(&session)
	if recipient == "" {
		recipient = user.Email
	}
	if s.mailer != nil && recipient != "" {
		if err := s.mailer.SendWelcome(ctx, recipient, user.FirstName); err != nil {
			log.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Failed to send welcome email")
		}
	}
	return result, nil
}

// CurrentPrice asks the provider for the configured price and falls back to
// the configured amount on any failure.
func (s *Service) CurrentPrice(ctx context.Context) Price {
	if s.gateway != nil && s.cfg.PriceID != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, priceLookupTimeout)
		defer cancel()
		price, err := s.gateway.GetPrice(lookupCtx, s.cfg.PriceID)
		if err == nil {
			price.Formatted = FormatAmount(price.AmountCents, price.Currency)
			return price
		}
		log.Ctx(ctx).Warn().Err(err).Str("price_id", s.cfg.PriceID).Msg("Price lookup failed, using configured price")
	}
	currency := strings.ToLower(s.cfg.FallbackCurrency)
	return Price{
		AmountCents: s.cfg.FallbackCents,
		Currency:    currency,
		Formatted:   FormatAmount(s.cfg.FallbackCents, currency),
		Source:      PriceSourceConfig,
	}
}

// CreateCheckoutSession starts a hosted checkout for user and returns the
// URL to redirect to.
func (s *Service) CreateCheckoutSession(ctx context.Context, user dbgen.User) (string, error) {
	if s.gateway == nil || s.cfg.PriceID == "" {
		return "", ErrNotConfigured
	}
	if models.UserStatus(user.Status) == models.UserStatusActive {
		return "", apperr.Conflict("Registration already paid", nil)
	}
	url, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    s.cfg.PriceID,
		UserID:     strconv.FormatInt(user.ID, 10),
		Email:      user.Email,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return "", apperr.Upstream("Could not start checkout", err)
	}
	return url, nil
}

func userIDFromSession(session *stripe.CheckoutSession) (int64, error) {
	raw := strings.TrimSpace(session.Metadata[metadataUserID])
	if raw == "" {
		raw = strings.TrimSpace(session.ClientReferenceID)
	}
	if raw == "" {
		return 0, errors.New("metadata.userId missing")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid userId %q", raw)
	}
	return id, nil
}

func customerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}

// FormatAmount renders cents in the league's Spanish display format, for
// example "25,00 €".
func FormatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	amount := fmt.Sprintf("%s%d,%02d", sign, cents/100, cents%100)
	switch strings.ToLower(currency) {
	case "eur":
		return amount + " €"
	case "usd":
		return "$" + amount
	default:
		return amount + " " + strings.ToUpper(currency)
	}
}
