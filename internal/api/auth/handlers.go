package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/ratelimit"
	"github.com/codr1/golfleague/internal/templates/pages"
)

const (
	authQueryTimeout   = 5 * time.Second
	defaultCallbackURL = "/dashboard"

	errorCodeCredentials  = "CredentialsSignin"
	errorCodeNotVerified  = "EmailNotVerified"
	errorCodeRateLimited  = "TooManyAttempts"
	errorCodeInvalidToken = "InvalidToken"
	errorCodeTokenExpired = "TokenExpired"
	errorCodeVerifyFailed = "VerificationFailed"
)

var (
	appConfig   *config.Config
	identitySvc *identity.Service
	limiter     *ratelimit.Limiter
)

var signInErrorMessages = map[string]string{
	errorCodeCredentials:  "Email o contraseña incorrectos.",
	errorCodeNotVerified:  "Verifica tu email antes de iniciar sesión.",
	errorCodeRateLimited:  "Demasiados intentos. Inténtalo más tarde.",
	errorCodeInvalidToken: "El enlace de verificación no es válido.",
	errorCodeTokenExpired: "El enlace de verificación ha caducado. Solicita uno nuevo.",
	errorCodeVerifyFailed: "No se pudo verificar el email.",
}

func InitHandlers(cfg *config.Config, svc *identity.Service, l *ratelimit.Limiter) {
	appConfig = cfg
	identitySvc = svc
	limiter = l
}

type registerRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	City      string   `json:"city"`
	Handicap  *float64 `json:"handicap"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type sessionResponse struct {
	User    sessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// /api/auth/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req registerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := identitySvc.Register(ctx, identity.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		City:      req.City,
		Handicap:  req.Handicap,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":    identity.ProfileFromUser(user),
		"message": "Registro completado. Revisa tu email para verificar la cuenta.",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write register response")
	}
}

// /api/auth/callback/credentials
// JSON clients get a JSON body; the HTML form gets redirects.
func HandleCredentialsCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	isForm := !isJSONRequest(r)

	req, err := readCredentials(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	callbackURL := safeCallbackURL(r.URL.Query().Get("callbackUrl"))

	fail := func(code string, appErr error) {
		if isForm {
			redirectToSignIn(w, r, code, callbackURL)
			return
		}
		apiutil.WriteError(w, r, appErr)
	}

	ip := clientIP(r)
	if limiter != nil {
		if result := limiter.CheckLogin(req.Email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("login", req.Email, ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
			fail(errorCodeRateLimited, apperr.RateLimited("Too many login attempts"))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := identitySvc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			if limiter != nil && limiter.RecordLoginFailure(req.Email, ip) {
				logger.Warn().Str("email", ratelimit.SanitizeIdentifier(req.Email)).Msg("Login locked out after repeated failures")
			}
			fail(errorCodeCredentials, err)
		case errors.Is(err, identity.ErrEmailNotVerified):
			fail(errorCodeNotVerified, err)
		default:
			logger.Error().Err(err).Msg("Failed to authenticate user")
			fail(errorCodeCredentials, err)
		}
		return
	}

	if limiter != nil {
		limiter.ResetLogin(req.Email)
	}

	authUser := &authz.AuthUser{ID: user.ID, Role: models.ParseRole(user.Role)}
	expires, err := SetAuthCookie(w, authUser)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to set auth cookie")
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User signed in")
	if isForm {
		http.Redirect(w, r, callbackURL, http.StatusSeeOther)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"url":     callbackURL,
		"session": newSessionResponse(user.ID, user.Email, identity.DisplayName(user), user.Role, expires),
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write sign-in response")
	}
}

// /api/auth/session
func HandleSession(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := authz.UserFromContext(r.Context())
	if user == nil {
		writeEmptySession(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	record, err := identitySvc.GetUser(ctx, user.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			ClearSessionCookie(w)
			writeEmptySession(w, r)
			return
		}
		apiutil.WriteError(w, r, err)
		return
	}

	expires, _ := SessionExpiry(r)
	// Role reported is the one signed into the cookie.
	if err := apiutil.WriteJSON(w, http.StatusOK, newSessionResponse(record.ID, record.Email, identity.DisplayName(record), string(user.Role), expires)); err != nil {
		logger.Error().Err(err).Msg("Failed to write session response")
	}
}

// /api/auth/signout
func HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	if user := authz.UserFromContext(r.Context()); user != nil {
		log.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User signed out")
	}
	if isFormRequest(r) {
		http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write sign-out response")
	}
}

// /api/auth/verify?token=&email=
func HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	err := identitySvc.VerifyEmail(ctx, query.Get("token"), query.Get("email"))
	switch {
	case err == nil:
		logger.Info().Str("email", ratelimit.SanitizeIdentifier(query.Get("email"))).Msg("Email verified")
		http.Redirect(w, r, "/auth/verified", http.StatusSeeOther)
	case errors.Is(err, identity.ErrTokenExpired):
		redirectToSignIn(w, r, errorCodeTokenExpired, "")
	case errors.Is(err, identity.ErrInvalidToken):
		redirectToSignIn(w, r, errorCodeInvalidToken, "")
	default:
		logger.Error().Err(err).Msg("Failed to verify email")
		redirectToSignIn(w, r, errorCodeVerifyFailed, "")
	}
}

// /api/auth/resend-verification
// Always 200 so the endpoint cannot be used to probe accounts.
func HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req struct {
		Email string `json:"email"`
	}
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	if err := identitySvc.ResendVerification(ctx, req.Email); err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			apiutil.WriteError(w, r, err)
			return
		}
		logger.Error().Err(err).Msg("Failed to resend verification email")
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Si la cuenta existe y no está verificada, recibirás un nuevo email.",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write resend response")
	}
}

// /auth/signin
func HandleSignInPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	data := pages.SignInData{
		AppName:     appName(),
		CallbackURL: safeCallbackURL(query.Get("callbackUrl")),
		Error:       signInErrorMessages[query.Get("error")],
	}
	if query.Get("error") != "" && data.Error == "" {
		data.Error = signInErrorMessages[errorCodeCredentials]
	}
	if data.CallbackURL == defaultCallbackURL {
		data.CallbackURL = ""
	}
	apiutil.RenderHTML(w, r, pages.SignIn(data))
}

// /auth/verified
func HandleVerifiedPage(w http.ResponseWriter, r *http.Request) {
	apiutil.RenderHTML(w, r, pages.Verified(appName()))
}

func readCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest
	if isJSONRequest(r) {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			return req, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, apperr.Wrap(apperr.KindValidation, "invalid form body", err)
		}
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}
	req.Email = identity.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, apperr.Validation("email and password are required")
	}
	return req, nil
}

func newSessionResponse(id int64, email, name, role string, expires time.Time) sessionResponse {
	return sessionResponse{
		User: sessionUser{
			ID:    id,
			Email: email,
			Name:  name,
			Role:  string(models.ParseRole(role)),
		},
		Expires: expires.UTC(),
	}
}

func writeEmptySession(w http.ResponseWriter, r *http.Request) {
	if err := apiutil.WriteJSON(w, http.StatusOK, struct{}{}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write session response")
	}
}

func redirectToSignIn(w http.ResponseWriter, r *http.Request, code, callbackURL string) {
	query := url.Values{}
	query.Set("error", code)
	if callbackURL != "" && callbackURL != defaultCallbackURL {
		query.Set("callbackUrl", callbackURL)
	}
	http.Redirect(w, r, "/auth/signin?"+query.Encode(), http.StatusSeeOther)
}

// safeCallbackURL only allows same-site relative paths.
func safeCallbackURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return defaultCallbackURL
	}
	return raw
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func isFormRequest(r *http.Request) bool {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") || strings.HasPrefix(contentType, "multipart/form-data")
}

func clientIP(r *http.Request) string {
	trustProxy := appConfig != nil && appConfig.RateLimit.TrustProxy
	return ratelimit.GetClientIP(r, trustProxy)
}

func appName() string {
	if appConfig == nil || appConfig.App.Name == "" {
		return "Liga de Golf"
	}
	return appConfig.App.Name
}
