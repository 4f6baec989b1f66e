package leagues

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/testutil"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func setupLeaguesTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevSvc := leaguesSvc
	prevNow := timeNow
	t.Cleanup(func() {
		leaguesSvc = prevSvc
		timeNow = prevNow
	})

	InitHandlers(leagues.NewService(database, nil))
	timeNow = func() time.Time { return testNow }

	return database
}

func withUser(req *http.Request, id int64, role models.Role) *http.Request {
	return req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: id, Role: role}))
}

func TestActiveCompetitionBeforeStartNotFound(t *testing.T) {
	database := setupLeaguesTest(t)
	testutil.InsertCompetition(t, database, testutil.CompetitionFixture{
		Name:      "Liga Verano",
		City:      "MADRID",
		StartDate: testNow.AddDate(0, 1, 0),
		EndDate:   testNow.AddDate(0, 4, 0),
		IsActive:  true,
	})

	rec := httptest.NewRecorder()
	HandleActiveCompetition(rec, httptest.NewRequest(http.MethodGet, "/api/active-competition?city=MADRID", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestActiveCompetitionWithinWindow(t *testing.T) {
	database := setupLeaguesTest(t)
	id := testutil.InsertCompetition(t, database, testutil.CompetitionFixture{
		Name:      "Liga Primavera",
		City:      "MADRID",
		StartDate: testNow.AddDate(0, -1, 0),
		EndDate:   testNow.AddDate(0, 1, 0),
		IsActive:  true,
	})

	rec := httptest.NewRecorder()
	HandleActiveCompetition(rec, httptest.NewRequest(http.MethodGet, "/api/active-competition?city=madrid", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var body struct {
		ID   int64  `json:"id"`
		City string `json:"city"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ID != id || body.City != "MADRID" {
		t.Fatalf("unexpected competition: %+v", body)
	}

	rec = httptest.NewRecorder()
	HandleActiveLeague(rec, httptest.NewRequest(http.MethodGet, "/api/active-league", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected active league, got %d", rec.Code)
	}
}

func TestActiveCompetitionInvalidCity(t *testing.T) {
	setupLeaguesTest(t)

	for _, target := range []string{"/api/active-competition", "/api/active-competition?city=ATLANTIS"} {
		rec := httptest.NewRecorder()
		HandleActiveCompetition(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestActiveCitiesEmptyArray(t *testing.T) {
	setupLeaguesTest(t)

	rec := httptest.NewRecorder()
	HandleActiveCities(rec, httptest.NewRequest(http.MethodGet, "/api/active-cities", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestZonesByCityInvalidCity(t *testing.T) {
	setupLeaguesTest(t)

	rec := httptest.NewRecorder()
	HandleZonesByCity(rec, httptest.NewRequest(http.MethodGet, "/api/zones-by-city?city=nowhere", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUpcomingMatchesRequiresSession(t *testing.T) {
	setupLeaguesTest(t)

	rec := httptest.NewRecorder()
	HandleUpcomingMatches(rec, httptest.NewRequest(http.MethodGet, "/api/user/matches/upcoming", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

type matchFixture struct {
	ana, ben, groupID, matchID int64
}

func insertPlayableMatch(t *testing.T, database *db.DB) matchFixture {
	t.Helper()

	ana := testutil.InsertUser(t, database, testutil.UserFixture{Email: "ana@example.com", FirstName: "Ana"})
	ben := testutil.InsertUser(t, database, testutil.UserFixture{Email: "ben@example.com", FirstName: "Ben"})
	competitionID := testutil.InsertCompetition(t, database, testutil.CompetitionFixture{
		Name:      "Liga Primavera",
		City:      "VALENCIA",
		StartDate: testNow.AddDate(0, -1, 0),
		EndDate:   testNow.AddDate(0, 2, 0),
		IsActive:  true,
	})
	groupID := testutil.InsertGroupWithPlayers(t, database, competitionID, "Grupo A", ana, ben)
	matchID := testutil.InsertMatch(t, database, testutil.MatchFixture{
		GroupID:   groupID,
		HomeID:    ana,
		AwayID:    ben,
		Deadline:  testNow.AddDate(0, 0, 7),
		MatchDate: testutil.TimePtr(testNow.AddDate(0, 0, -1)),
	})
	return matchFixture{ana: ana, ben: ben, groupID: groupID, matchID: matchID}
}

func TestUpcomingMatchesForUser(t *testing.T) {
	database := setupLeaguesTest(t)
	f := insertPlayableMatch(t, database)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/user/matches/upcoming", nil), f.ben, models.RoleUser)
	rec := httptest.NewRecorder()
	HandleUpcomingMatches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body struct {
		Data  []leagues.MatchView `json:"data"`
		Count int                 `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 || len(body.Data) != 1 {
		t.Fatalf("expected one match, got %+v", body)
	}
	match := body.Data[0]
	if match.IsHome || match.Opponent.ID != f.ana || !match.CanReportResult {
		t.Fatalf("unexpected match view: %+v", match)
	}
}

func TestReportAndConfirmResult(t *testing.T) {
	database := setupLeaguesTest(t)
	f := insertPlayableMatch(t, database)
	matchPath := strconv.FormatInt(f.matchID, 10)

	report := func(userID int64, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/user/matches/"+matchPath+"/report", strings.NewReader(body))
		req.SetPathValue("id", matchPath)
		rec := httptest.NewRecorder()
		HandleReportResult(rec, withUser(req, userID, models.RoleUser))
		return rec
	}
	confirm := func(userID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/user/matches/"+matchPath+"/confirm", nil)
		req.SetPathValue("id", matchPath)
		rec := httptest.NewRecorder()
		HandleConfirmResult(rec, withUser(req, userID, models.RoleUser))
		return rec
	}

	if rec := report(f.ana, `{"homeScore":3}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for missing score, got %d", http.StatusBadRequest, rec.Code)
	}

	rec := report(f.ana, `{"homeScore":3,"awayScore":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"REPORTED"`) {
		t.Fatalf("expected reported match, got %s", rec.Body.String())
	}

	if rec := report(f.ben, `{"homeScore":1,"awayScore":4}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d for second report, got %d", http.StatusConflict, rec.Code)
	}

	if rec := confirm(f.ana); rec.Code != http.StatusForbidden {
		t.Fatalf("expected reporter confirm to be forbidden, got %d", rec.Code)
	}

	rec = confirm(f.ben)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"CONFIRMED"`) {
		t.Fatalf("expected confirmed match, got %d %s", rec.Code, rec.Body.String())
	}

	standingsReq := httptest.NewRequest(http.MethodGet, "/api/groups/x/standings", nil)
	standingsReq.SetPathValue("id", strconv.FormatInt(f.groupID, 10))
	rec = httptest.NewRecorder()
	HandleGroupStandings(rec, standingsReq)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected standings, got %d", rec.Code)
	}
	var standings struct {
		Data []leagues.PlayerStanding `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&standings); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(standings.Data) != 2 || standings.Data[0].PlayerID != f.ana || standings.Data[0].Points != 3 {
		t.Fatalf("unexpected standings: %+v", standings.Data)
	}
}

func TestGroupStandingsMissingGroup(t *testing.T) {
	setupLeaguesTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/groups/404/standings", nil)
	req.SetPathValue("id", "404")
	rec := httptest.NewRecorder()
	HandleGroupStandings(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
