package dashboard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/testutil"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func setupDashboardTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevConfig := appConfig
	prevIdentity := identitySvc
	prevLeagues := leaguesSvc
	prevNow := timeNow
	t.Cleanup(func() {
		appConfig = prevConfig
		identitySvc = prevIdentity
		leaguesSvc = prevLeagues
		timeNow = prevNow
	})

	cfg := &config.Config{}
	cfg.App.Name = "Liga Test"
	InitHandlers(cfg, identity.NewService(database, nil, identity.Options{}), leagues.NewService(database, nil))
	timeNow = func() time.Time { return testNow }

	return database
}

func asUser(req *http.Request, id int64) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: id, Role: models.RoleUser}))
}

func TestDashboardRedirectsWithoutSession(t *testing.T) {
	setupDashboardTest(t)

	rec := httptest.NewRecorder()
	HandleDashboardPage(rec, httptest.NewRequest(http.MethodGet, "/dashboard?payment=success", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/auth/signin?callbackUrl=") || !strings.Contains(location, "%2Fdashboard") {
		t.Fatalf("unexpected redirect %q", location)
	}
}

func TestDashboardShowsCheckoutForPendingPayment(t *testing.T) {
	database := setupDashboardTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "pending@example.com", FirstName: "Lucía", Status: "PENDING_PAYMENT"})

	rec := httptest.NewRecorder()
	HandleDashboardPage(rec, asUser(httptest.NewRequest(http.MethodGet, "/dashboard?payment=cancelled", nil), userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Lucía", "/api/stripe/checkout", "El pago se canceló.", "No tienes partidos pendientes."} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected dashboard to contain %q", want)
		}
	}
}

func TestDashboardListsUpcomingMatches(t *testing.T) {
	database := setupDashboardTest(t)
	home := testutil.InsertUser(t, database, testutil.UserFixture{Email: "home@example.com", FirstName: "Ana", LastName: "Ruiz"})
	away := testutil.InsertUser(t, database, testutil.UserFixture{Email: "away@example.com", FirstName: "Berta", LastName: "Gil"})
	competitionID := testutil.InsertCompetition(t, database, testutil.CompetitionFixture{
		Name:      "Liga Primavera",
		City:      "MADRID",
		StartDate: testNow.AddDate(0, -1, 0),
		EndDate:   testNow.AddDate(0, 2, 0),
		IsActive:  true,
	})
	groupID := testutil.InsertGroupWithPlayers(t, database, competitionID, "Grupo A", home, away)
	testutil.InsertMatch(t, database, testutil.MatchFixture{
		GroupID:  groupID,
		HomeID:   home,
		AwayID:   away,
		Deadline: testNow.AddDate(0, 0, 14),
	})

	rec := httptest.NewRecorder()
	HandleDashboardPage(rec, asUser(httptest.NewRequest(http.MethodGet, "/dashboard", nil), home))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Berta") {
		t.Fatalf("expected opponent in match list: %s", body)
	}
	if strings.Contains(body, "/api/stripe/checkout") {
		t.Fatalf("active user should not see checkout form")
	}
}

func TestProfilePage(t *testing.T) {
	database := setupDashboardTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "perfil@example.com", FirstName: "Carmen"})

	rec := httptest.NewRecorder()
	HandleProfilePage(rec, asUser(httptest.NewRequest(http.MethodGet, "/profile", nil), userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "perfil@example.com") {
		t.Fatalf("expected email on profile page")
	}
}

func TestProfilePageUnknownUserRedirects(t *testing.T) {
	setupDashboardTest(t)

	rec := httptest.NewRecorder()
	HandleProfilePage(rec, asUser(httptest.NewRequest(http.MethodGet, "/profile", nil), 9999))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}
