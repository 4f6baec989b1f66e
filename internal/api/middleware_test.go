package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/golfleague/internal/adminsession"
	"github.com/codr1/golfleague/internal/api/auth"
	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/config"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newAdminManager(t *testing.T) *adminsession.Manager {
	t.Helper()
	manager, err := adminsession.NewManager("guard-admin-secret", nil, adminsession.Options{})
	if err != nil {
		t.Fatalf("new admin manager: %v", err)
	}
	return manager
}

func TestWithRequestIDSetsHeaderAndContext(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatalf("expected request id in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected header %q to match context id %q", rec.Header().Get("X-Request-ID"), seen)
	}
}

func TestWithLoggingWithoutRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	WithLogging(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestWithRecovery(t *testing.T) {
	handler := WithRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestWithAuthLoadsSessionCookie(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.SecretKey = "middleware-secret"
	cfg.App.Environment = "development"
	auth.InitHandlers(cfg, nil, nil)
	t.Cleanup(func() { auth.InitHandlers(nil, nil, nil) })

	issued := httptest.NewRecorder()
	if _, err := auth.SetAuthCookie(issued, &authz.AuthUser{ID: 42, Role: models.RoleUser}); err != nil {
		t.Fatalf("set auth cookie: %v", err)
	}

	var user *authz.AuthUser
	handler := WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = authz.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, cookie := range issued.Result().Cookies() {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if user == nil || user.ID != 42 {
		t.Fatalf("expected user 42 in context, got %+v", user)
	}
}

func TestWithAuthIgnoresTamperedCookie(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.SecretKey = "middleware-secret"
	auth.InitHandlers(cfg, nil, nil)
	t.Cleanup(func() { auth.InitHandlers(nil, nil, nil) })

	called := false
	handler := WithAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if authz.UserFromContext(r.Context()) != nil {
			t.Fatalf("expected anonymous request")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "golfleague_session", Value: "bogus.signature"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("expected next handler to run")
	}
}

func TestRouteGuardMemberPages(t *testing.T) {
	guard := WithRouteGuard(newAdminManager(t))(okHandler())

	tests := []struct {
		name     string
		path     string
		user     *authz.AuthUser
		status   int
		location string
	}{
		{name: "dashboard anonymous", path: "/dashboard", status: http.StatusSeeOther, location: "/auth/signin?callbackUrl=%2Fdashboard"},
		{name: "profile subpath anonymous", path: "/profile/edit", status: http.StatusSeeOther, location: "/auth/signin?callbackUrl=%2Fprofile%2Fedit"},
		{name: "dashboard signed in", path: "/dashboard", user: &authz.AuthUser{ID: 1, Role: models.RoleUser}, status: http.StatusOK},
		{name: "similar prefix is public", path: "/profiles", status: http.StatusOK},
		{name: "public api", path: "/api/active-cities", status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.user != nil {
				req = req.WithContext(authz.ContextWithUser(req.Context(), tc.user))
			}
			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rec.Code)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected redirect %q, got %q", tc.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouteGuardAdminPages(t *testing.T) {
	manager := newAdminManager(t)
	guard := WithRouteGuard(manager)(okHandler())

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to /admin/login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("login page must stay reachable, got %d", rec.Code)
	}

	token, err := manager.CreateAdminSession(dbgen.User{ID: 3, Email: "admin@example.com", Role: "ADMIN"})
	if err != nil {
		t.Fatalf("create admin session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/competitions", nil)
	req.AddCookie(&http.Cookie{Name: adminsession.CookieName, Value: token})
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin page with session, got %d", rec.Code)
	}

	// A user session is not an admin session.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 3, Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	guard.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect without admin cookie, got %d", rec.Code)
	}
}
