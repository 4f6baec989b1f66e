// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/adminsession"
	"github.com/codr1/golfleague/internal/api"
	"github.com/codr1/golfleague/internal/api/admin"
	"github.com/codr1/golfleague/internal/api/auth"
	"github.com/codr1/golfleague/internal/api/contact"
	"github.com/codr1/golfleague/internal/api/dashboard"
	leaguesapi "github.com/codr1/golfleague/internal/api/leagues"
	paymentsapi "github.com/codr1/golfleague/internal/api/payments"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/email"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/payments"
	"github.com/codr1/golfleague/internal/ratelimit"
)

// dependencies holds the long-lived services shared by the handlers.
type dependencies struct {
	db       *db.DB
	mailer   *email.Dispatcher
	identity *identity.Service
	leagues  *leagues.Service
	payments *payments.Service
	admins   *adminsession.Manager
	limiter  *ratelimit.Limiter
}

func newDependencies(cfg *config.Config) (*dependencies, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deps, err := buildDependencies(cfg, database, newEmailSender(cfg))
	if err != nil {
		database.Close()
		return nil, err
	}
	return deps, nil
}

func newEmailSender(cfg *config.Config) email.EmailSender {
	if !cfg.SESConfigured() {
		log.Warn().Msg("SES not configured; emails will be logged only")
		return email.LogSender{}
	}
	client, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create SES client; emails will be logged only")
		return email.LogSender{}
	}
	return client
}

func buildDependencies(cfg *config.Config, database *db.DB, sender email.EmailSender) (*dependencies, error) {
	mailer := email.NewDispatcher(sender, cfg.App.Name, cfg.App.BaseURL, cfg.Email.ContactAddress)

	identitySvc := identity.NewService(database, mailer, identity.Options{
		VerificationTTL: time.Duration(cfg.Auth.VerificationHours) * time.Hour,
		PhoneRegion:     cfg.Auth.PhoneRegion,
	})

	var gateway payments.Gateway
	if cfg.Payments.SecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.Payments.SecretKey)
	} else {
		log.Warn().Msg("Stripe secret key missing; checkout is disabled")
	}
	paymentsSvc := payments.NewService(database, gateway, mailer, payments.Config{
		WebhookSecret:    cfg.Payments.WebhookSecret,
		PriceID:          cfg.Payments.PriceID,
		FallbackCents:    cfg.Payments.PriceCents,
		FallbackCurrency: cfg.Payments.Currency,
		SuccessURL:       mailer.URL(cfg.Payments.SuccessPath),
		CancelURL:        mailer.URL(cfg.Payments.CancelPath),
	})

	admins, err := adminsession.NewManager(cfg.Auth.AdminSessionSecret, database.Queries, adminsession.Options{
		TTL:    time.Duration(cfg.Auth.SessionHours) * time.Hour,
		Secure: !cfg.IsDevelopment(),
	})
	if err != nil {
		return nil, fmt.Errorf("admin sessions: %w", err)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		LoginMaxAttempts:    cfg.RateLimit.LoginMaxAttempts,
		LoginLockout:        time.Duration(cfg.RateLimit.LoginLockoutMins) * time.Minute,
		ContactMaxIPPerHour: cfg.RateLimit.ContactMaxPerHour,
	})

	return &dependencies{
		db:       database,
		mailer:   mailer,
		identity: identitySvc,
		leagues:  leagues.NewService(database, mailer),
		payments: paymentsSvc,
		admins:   admins,
		limiter:  limiter,
	}, nil
}

func (d *dependencies) Close() {
	if d.limiter != nil {
		d.limiter.Close()
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

func newServer(cfg *config.Config, deps *dependencies) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      newHandler(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(cfg *config.Config, deps *dependencies) http.Handler {
	initHandlers(cfg, deps)

	router := http.NewServeMux()
	registerRoutes(router, cfg)

	// Setup middleware chain
	return api.ChainMiddleware(
		router,
		api.WithRouteGuard(deps.admins),
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)
}

func initHandlers(cfg *config.Config, deps *dependencies) {
	auth.InitHandlers(cfg, deps.identity, deps.limiter)
	admin.InitHandlers(cfg, deps.admins, deps.identity, deps.leagues, deps.limiter)
	leaguesapi.InitHandlers(deps.leagues)
	paymentsapi.InitHandlers(deps.payments, deps.identity)
	contact.InitHandlers(cfg, deps.mailer, deps.limiter)
	dashboard.InitHandlers(cfg, deps.identity, deps.leagues)
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public directory
	mux.HandleFunc("GET /api/active-cities", leaguesapi.HandleActiveCities)
	mux.HandleFunc("GET /api/active-competition", leaguesapi.HandleActiveCompetition)
	mux.HandleFunc("GET /api/active-league", leaguesapi.HandleActiveLeague)
	mux.HandleFunc("GET /api/zones-by-city", leaguesapi.HandleZonesByCity)
	mux.HandleFunc("GET /api/groups/{id}/standings", leaguesapi.HandleGroupStandings)
	mux.HandleFunc("GET /api/price", paymentsapi.HandlePrice)
	mux.HandleFunc("POST /api/contact", contact.HandleContact)

	// User auth
	mux.HandleFunc("POST /api/auth/register", auth.HandleRegister)
	mux.HandleFunc("POST /api/auth/callback/credentials", auth.HandleCredentialsCallback)
	mux.HandleFunc("GET /api/auth/session", auth.HandleSession)
	mux.HandleFunc("POST /api/auth/signout", auth.HandleSignOut)
	mux.HandleFunc("GET /api/auth/verify", auth.HandleVerifyEmail)
	mux.HandleFunc("POST /api/auth/resend-verification", auth.HandleResendVerification)
	mux.HandleFunc("GET /auth/signin", auth.HandleSignInPage)
	mux.HandleFunc("GET /auth/verified", auth.HandleVerifiedPage)

	// Payments
	mux.HandleFunc("POST /api/stripe/webhook", paymentsapi.HandleWebhook)
	mux.HandleFunc("POST /api/stripe/checkout", paymentsapi.HandleCheckout)

	// Member matches
	mux.HandleFunc("GET /api/user/matches/upcoming", leaguesapi.HandleUpcomingMatches)
	mux.HandleFunc("POST /api/user/matches/{id}/report", leaguesapi.HandleReportResult)
	mux.HandleFunc("POST /api/user/matches/{id}/confirm", leaguesapi.HandleConfirmResult)

	// Member pages
	mux.HandleFunc("GET /dashboard", dashboard.HandleDashboardPage)
	mux.HandleFunc("GET /profile", dashboard.HandleProfilePage)

	// Admin session
	mux.HandleFunc("POST /api/admin/login", admin.HandleLogin)
	mux.HandleFunc("POST /api/admin/logout", admin.HandleLogout)
	mux.HandleFunc("GET /api/admin/me", admin.RequireAdmin(admin.HandleMe))
	mux.HandleFunc("GET /admin/login", admin.HandleLoginPage)
	mux.HandleFunc("GET /admin", admin.HandleDashboardPage)

	// Admin directory
	mux.HandleFunc("GET /api/admin/users", admin.RequireAdmin(admin.HandleListUsers))
	mux.HandleFunc("GET /api/admin/competitions", admin.RequireAdmin(admin.HandleListCompetitions))
	mux.HandleFunc("POST /api/admin/competitions", admin.RequireAdmin(admin.HandleCreateCompetition))
	mux.HandleFunc("PUT /api/admin/competitions/{id}/active", admin.RequireAdmin(admin.HandleSetCompetitionActive))
	mux.HandleFunc("DELETE /api/admin/competitions/{id}", admin.RequireAdmin(admin.HandleDeleteCompetition))
	mux.HandleFunc("POST /api/admin/competitions/{id}/players", admin.RequireAdmin(admin.HandleEnrollPlayer))
	mux.HandleFunc("POST /api/admin/competitions/{id}/groups", admin.RequireAdmin(admin.HandleCreateGroup))
	mux.HandleFunc("GET /api/admin/groups/{id}/players", admin.RequireAdmin(admin.HandleListGroupPlayers))
	mux.HandleFunc("POST /api/admin/groups/{id}/players", admin.RequireAdmin(admin.HandleAssignPlayer))
	mux.HandleFunc("POST /api/admin/groups/{id}/matches", admin.RequireAdmin(admin.HandleCreateMatch))
	mux.HandleFunc("GET /api/admin/zones", admin.RequireAdmin(admin.HandleListZones))
	mux.HandleFunc("POST /api/admin/zones", admin.RequireAdmin(admin.HandleCreateZone))
	mux.HandleFunc("GET /api/admin/leagues", admin.RequireAdmin(admin.HandleListLeagues))
	mux.HandleFunc("POST /api/admin/leagues", admin.RequireAdmin(admin.HandleCreateLeague))

	// Static file handling
	fs := http.FileServer(http.Dir(cfg.App.StaticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
