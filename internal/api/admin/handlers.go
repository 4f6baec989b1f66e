// Package admin serves the administrator JSON API and pages.
package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/adminsession"
	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/ratelimit"
	"github.com/codr1/golfleague/internal/templates/pages"
)

const adminQueryTimeout = 5 * time.Second

var (
	appConfig   *config.Config
	sessions    *adminsession.Manager
	identitySvc *identity.Service
	leaguesSvc  *leagues.Service
	limiter     *ratelimit.Limiter
)

var errAdminUnauthorized = apperr.Auth("Unauthorized")

type adminContextKey struct{}

func InitHandlers(cfg *config.Config, manager *adminsession.Manager, idSvc *identity.Service, lgSvc *leagues.Service, l *ratelimit.Limiter) {
	appConfig = cfg
	sessions = manager
	identitySvc = idSvc
	leaguesSvc = lgSvc
	limiter = l
}

// RequireAdmin guards admin JSON APIs. The token is verified and the admin
// is re-read from the store so a demoted or deleted account loses access
// before its token expires.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		payload := sessions.FromRequest(r)
		if payload == nil {
			apiutil.WriteError(w, r, errAdminUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
		defer cancel()

		user, err := identitySvc.GetUser(ctx, payload.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				logger.Warn().Int64("user_id", payload.UserID).Msg("Admin session for missing user")
				sessions.ClearAdminSessionCookie(w)
				apiutil.WriteError(w, r, errAdminUnauthorized)
				return
			}
			apiutil.WriteError(w, r, err)
			return
		}
		if models.ParseRole(user.Role) != models.RoleAdmin {
			logger.Warn().Int64("user_id", user.ID).Msg("Admin session for non-admin user")
			sessions.ClearAdminSessionCookie(w)
			apiutil.WriteError(w, r, errAdminUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), adminContextKey{}, payload)))
	}
}

func adminFromContext(ctx context.Context) *adminsession.AdminPayload {
	payload, _ := ctx.Value(adminContextKey{}).(*adminsession.AdminPayload)
	return payload
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /api/admin/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	form := isFormRequest(r)
	fail := func(err error) {
		if form {
			http.Redirect(w, r, "/admin/login?error="+url.QueryEscape(apperr.PublicMessage(err)), http.StatusSeeOther)
			return
		}
		apiutil.WriteError(w, r, err)
	}

	req, err := readLoginRequest(r, form)
	if err != nil {
		fail(err)
		return
	}
	email := req.Email

	ip := ratelimit.GetClientIP(r, appConfig != nil && appConfig.RateLimit.TrustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin("admin:"+email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("admin_login", email, ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			fail(apperr.RateLimited("Too many login attempts"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	user, err := sessions.VerifyAdminCredentials(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, adminsession.ErrInvalidCredentials) {
			if limiter != nil {
				limiter.RecordLoginFailure("admin:"+email, ip)
			}
			logger.Warn().Str("email", ratelimit.SanitizeIdentifier(email)).Msg("Admin login rejected")
			fail(apperr.Auth("Invalid credentials"))
			return
		}
		fail(err)
		return
	}
	if limiter != nil {
		limiter.ResetLogin("admin:" + email)
	}

	token, err := sessions.CreateAdminSession(user)
	if err != nil {
		fail(err)
		return
	}
	sessions.SetAdminSessionCookie(w, token)

	logger.Info().Int64("user_id", user.ID).Msg("Admin signed in")
	if form {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"user": identity.ProfileFromUser(user),
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write admin login response")
	}
}

func readLoginRequest(r *http.Request, form bool) (loginRequest, error) {
	var req loginRequest
	if form {
		if err := r.ParseForm(); err != nil {
			return req, apperr.Wrap(apperr.KindValidation, "invalid form body", err)
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	} else if err := apiutil.DecodeJSON(r, &req); err != nil {
		return req, err
	}
	req.Email = identity.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, apperr.Validation("email and password are required")
	}
	return req, nil
}

func isFormRequest(r *http.Request) bool {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data")
}

// /api/admin/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	sessions.ClearAdminSessionCookie(w)
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write admin logout response")
	}
}

// /api/admin/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	payload := adminFromContext(r.Context())
	if payload == nil {
		apiutil.WriteError(w, r, errAdminUnauthorized)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"id":        payload.UserID,
		"email":     payload.Email,
		"role":      payload.Role,
		"expiresAt": payload.ExpiresAt.UTC(),
	})
}

// /api/admin/users
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	users, err := identitySvc.ListUsers(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	profiles := make([]identity.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, identity.ProfileFromUser(user))
	}
	writeJSON(w, r, http.StatusOK, profiles)
}

// /admin/login
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sessions.FromRequest(r) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	apiutil.RenderHTML(w, r, pages.AdminLogin(appName(), r.URL.Query().Get("error")))
}

// /admin
func HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	payload := sessions.FromRequest(r)
	if payload == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	summaries, err := leaguesSvc.ListCompetitionsWithAggregates(ctx)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to load competitions")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	apiutil.RenderHTML(w, r, pages.AdminDashboard(pages.AdminDashboardData{
		AppName:      appName(),
		AdminEmail:   payload.Email,
		Competitions: summaries,
	}))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

func appName() string {
	if appConfig == nil || appConfig.App.Name == "" {
		return "Liga de Golf"
	}
	return appConfig.App.Name
}
