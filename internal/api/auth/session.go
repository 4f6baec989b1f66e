package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/models"
)

const (
	authCookieName        = "golfleague_session"
	defaultAuthSessionTTL = 8 * time.Hour
)

var (
	errAuthConfigMissing = errors.New("auth configuration missing")
	errInvalidAuthCookie = errors.New("invalid auth cookie")
	errAuthExpired       = errors.New("auth session expired")
)

// timeNow is swapped in tests.
var timeNow = time.Now

type authSession struct {
	UserID    int64  `json:"id"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"exp"`
}

func isSecureCookie() bool {
	return appConfig == nil || !appConfig.IsDevelopment()
}

func sessionTTL() time.Duration {
	if appConfig == nil || appConfig.Auth.SessionHours <= 0 {
		return defaultAuthSessionTTL
	}
	return time.Duration(appConfig.Auth.SessionHours) * time.Hour
}

// SetAuthCookie issues the signed session cookie for user.
func SetAuthCookie(w http.ResponseWriter, user *authz.AuthUser) (time.Time, error) {
	if w == nil || user == nil {
		return time.Time{}, errors.New("auth session requires response and user")
	}

	ttl := sessionTTL()
	expiresAt := timeNow().Add(ttl)
	session := authSession{
		UserID:    user.ID,
		Role:      string(models.ParseRole(string(user.Role))),
		ExpiresAt: expiresAt.Unix(),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return time.Time{}, err
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	signature, err := signPayload(encodedPayload)
	if err != nil {
		return time.Time{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    encodedPayload + "." + signature,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(session.ExpiresAt, 0),
		MaxAge:   int(ttl.Seconds()),
	})

	return time.Unix(session.ExpiresAt, 0), nil
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest returns the user in a valid session cookie, or nil when
// there is no cookie. A tampered or expired cookie is an error.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	session, err := parseAuthCookie(r)
	if err != nil || session == nil {
		return nil, err
	}

	return &authz.AuthUser{
		ID:   session.UserID,
		Role: models.ParseRole(session.Role),
	}, nil
}

// SessionExpiry returns when the request's session cookie expires.
func SessionExpiry(r *http.Request) (time.Time, bool) {
	session, err := parseAuthCookie(r)
	if err != nil || session == nil {
		return time.Time{}, false
	}
	return time.Unix(session.ExpiresAt, 0), true
}

func parseAuthCookie(r *http.Request) (*authSession, error) {
	if r == nil {
		return nil, nil
	}

	if appConfig == nil || appConfig.App.SecretKey == "" {
		return nil, errAuthConfigMissing
	}

	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	parts := strings.SplitN(cookie.Value, ".", 2)
	if len(parts) != 2 {
		return nil, errInvalidAuthCookie
	}

	encodedPayload := parts[0]
	signature := parts[1]
	expectedSignature, err := signPayload(encodedPayload)
	if err != nil {
		return nil, err
	}

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return nil, errors.New("invalid auth cookie signature")
	}

	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, err
	}

	var session authSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	if session.UserID <= 0 {
		return nil, errInvalidAuthCookie
	}

	if session.ExpiresAt <= timeNow().Unix() {
		return nil, errAuthExpired
	}

	return &session, nil
}

func signPayload(payload string) (string, error) {
	if appConfig == nil || appConfig.App.SecretKey == "" {
		return "", errAuthConfigMissing
	}

	mac := hmac.New(sha256.New, []byte(appConfig.App.SecretKey))
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
