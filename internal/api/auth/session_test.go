package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/models"
)

func useTestConfig(t *testing.T, env string) {
	t.Helper()
	prevConfig := appConfig
	appConfig = &config.Config{}
	appConfig.App.Environment = env
	appConfig.App.SecretKey = "test-secret"
	t.Cleanup(func() {
		appConfig = prevConfig
	})
}

func TestAuthCookieRoundTrip(t *testing.T) {
	useTestConfig(t, "production")

	rec := httptest.NewRecorder()
	expires, err := SetAuthCookie(rec, &authz.AuthUser{ID: 42, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("set auth cookie: %v", err)
	}
	if time.Until(expires) < 7*time.Hour {
		t.Fatalf("expected 8h expiry, got %s", expires)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != authCookieName || !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user == nil || user.ID != 42 || user.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthCookieNotSecureInDevelopment(t *testing.T) {
	useTestConfig(t, "development")

	rec := httptest.NewRecorder()
	if _, err := SetAuthCookie(rec, &authz.AuthUser{ID: 1, Role: models.RoleUser}); err != nil {
		t.Fatalf("set auth cookie: %v", err)
	}
	if rec.Result().Cookies()[0].Secure {
		t.Fatal("expected insecure cookie in development")
	}
}

func TestUserFromRequestNoCookie(t *testing.T) {
	useTestConfig(t, "development")

	user, err := UserFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || user != nil {
		t.Fatalf("expected no user and no error, got %+v, %v", user, err)
	}
}

func TestParseAuthCookieRejectsTamperedSignature(t *testing.T) {
	useTestConfig(t, "development")

	payload, _ := json.Marshal(authSession{UserID: 1, Role: "ADMIN", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  authCookieName,
		Value: base64.RawURLEncoding.EncodeToString(payload) + ".forged",
	})

	if _, err := parseAuthCookie(req); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseAuthCookieRejectsExpired(t *testing.T) {
	useTestConfig(t, "development")

	payload, _ := json.Marshal(authSession{UserID: 1, Role: "USER", ExpiresAt: time.Now().Add(-time.Minute).Unix()})
	req := makeAuthRequest(t, payload)

	if _, err := parseAuthCookie(req); err != errAuthExpired {
		t.Fatalf("expected errAuthExpired, got %v", err)
	}
}

func TestParseAuthCookieUnknownRoleDefaultsToUser(t *testing.T) {
	useTestConfig(t, "development")

	payload, _ := json.Marshal(authSession{UserID: 9, Role: "superuser", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	user, err := UserFromRequest(makeAuthRequest(t, payload))
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected role USER, got %q", user.Role)
	}
}

func TestParseAuthCookieMissingSecret(t *testing.T) {
	prevConfig := appConfig
	appConfig = nil
	t.Cleanup(func() {
		appConfig = prevConfig
	})

	if _, err := parseAuthCookie(httptest.NewRequest(http.MethodGet, "/", nil)); err != errAuthConfigMissing {
		t.Fatalf("expected errAuthConfigMissing, got %v", err)
	}
}

func makeAuthRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()

	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	signature, err := signPayload(encodedPayload)
	if err != nil {
		t.Fatalf("sign payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  authCookieName,
		Value: encodedPayload + "." + signature,
	})

	return req
}
