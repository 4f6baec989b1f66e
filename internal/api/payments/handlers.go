// Package payments exposes the payment provider webhook, checkout and price
// endpoints.
package payments

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/payments"
)

const (
	signatureHeader     = "Stripe-Signature"
	maxWebhookBodyBytes = 65536
	paymentsTimeout     = 10 * time.Second
)

var (
	paymentsSvc *payments.Service
	identitySvc *identity.Service
)

func InitHandlers(svc *payments.Service, idSvc *identity.Service) {
	paymentsSvc = svc
	identitySvc = idSvc
}

// POST /api/stripe/webhook
// Signature failures answer 400; anything that stops the event from being
// applied answers 500 so the provider retries.
func HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read webhook body")
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentsTimeout)
	defer cancel()

	result, err := paymentsSvc.HandleWebhook(ctx, payload, r.Header.Get(signatureHeader))
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": apperr.PublicMessage(err)})
			return
		}
		logger.Error().Err(err).Str("event_id", result.EventID).Msg("Failed to process payment webhook")
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "Webhook processing failed"})
		return
	}

	logger.Info().
		Str("event_id", result.EventID).
		Str("event_type", result.EventType).
		Bool("duplicate", result.Duplicate).
		Bool("ignored", result.Ignored).
		Int64("user_id", result.UserID).
		Msg("Payment webhook processed")

	resp := map[string]bool{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// POST /api/stripe/checkout
func HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionUser := apiutil.RequireUser(w, r)
	if sessionUser == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentsTimeout)
	defer cancel()

	user, err := identitySvc.GetUser(ctx, sessionUser.ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	checkoutURL, err := paymentsSvc.CreateCheckoutSession(ctx, user)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("Checkout session created")
	if isFormRequest(r) {
		http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"url": checkoutURL})
}

// GET /api/price
func HandlePrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, paymentsSvc.CurrentPrice(r.Context()))
}

func isFormRequest(r *http.Request) bool {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
