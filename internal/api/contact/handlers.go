package contact

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/ratelimit"
)

const (
	contactTimeout   = 10 * time.Second
	maxSubjectLength = 200
	maxMessageLength = 5000
)

// Relay forwards a visitor message to the league inbox. *email.Dispatcher
// satisfies it.
type Relay interface {
	RelayContact(ctx context.Context, from, subject, message string) error
}

var (
	appConfig *config.Config
	relay     Relay
	limiter   *ratelimit.Limiter
)

func InitHandlers(cfg *config.Config, r Relay, l *ratelimit.Limiter) {
	appConfig = cfg
	relay = r
	limiter = l
}

type contactRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// POST /api/contact
func HandleContact(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req contactRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	req.Email = identity.NormalizeEmail(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := validateContact(req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ip := clientIP(r)
	if limiter != nil {
		if result := limiter.AllowContact(ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("contact", req.Email, ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			apiutil.WriteError(w, r, apperr.RateLimited("Too many messages, try again later"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), contactTimeout)
	defer cancel()

	if err := relay.RelayContact(ctx, req.Email, req.Subject, req.Message); err != nil {
		apiutil.WriteError(w, r, apperr.Internal(err))
		return
	}

	logger.Info().Str("from", ratelimit.SanitizeIdentifier(req.Email)).Msg("Contact message relayed")
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true}); err != nil {
		logger.Error().Err(err).Msg("Failed to write contact response")
	}
}

func validateContact(req contactRequest) error {
	switch {
	case req.Email == "":
		return apiutil.FieldError{Field: "email", Reason: "is required"}
	case !strings.Contains(req.Email, "@"):
		return apiutil.FieldError{Field: "email", Reason: "must be a valid address"}
	case req.Subject == "":
		return apiutil.FieldError{Field: "subject", Reason: "is required"}
	case len(req.Subject) > maxSubjectLength:
		return apiutil.FieldError{Field: "subject", Reason: "is too long"}
	case req.Message == "":
		return apiutil.FieldError{Field: "message", Reason: "is required"}
	case len(req.Message) > maxMessageLength:
		return apiutil.FieldError{Field: "message", Reason: "is too long"}
	}
	return nil
}

func clientIP(r *http.Request) string {
	trustProxy := appConfig != nil && appConfig.RateLimit.TrustProxy
	return ratelimit.GetClientIP(r, trustProxy)
}
