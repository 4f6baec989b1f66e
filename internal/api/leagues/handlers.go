// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/models"
)

const leagueQueryTimeout = 5 * time.Second

var (
	leaguesSvc *leagues.Service
	timeNow    = time.Now
)

func InitHandlers(svc *leagues.Service) {
	leaguesSvc = svc
}

type resultRequest struct {
	HomeScore *int64 `json:"homeScore"`
	AwayScore *int64 `json:"awayScore"`
}

// GET /api/active-cities
func HandleActiveCities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	cities, err := leaguesSvc.ListActiveCities(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if cities == nil {
		cities = []models.City{}
	}
	writeJSON(w, r, http.StatusOK, cities)
}

// GET /api/active-competition?city=
func HandleActiveCompetition(w http.ResponseWriter, r *http.Request) {
	city, err := models.ParseCity(r.URL.Query().Get("city"))
	if err != nil {
		apiutil.WriteError(w, r, apperr.Validation(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	competition, err := leaguesSvc.FindActiveCompetition(ctx, city, timeNow())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, competition)
}

// GET /api/active-league
func HandleActiveLeague(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	competition, err := leaguesSvc.FindGlobalActiveCompetition(ctx, timeNow())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, competition)
}

// GET /api/zones-by-city?city=&lang=
func HandleZonesByCity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	city, err := models.ParseCity(query.Get("city"))
	if err != nil {
		apiutil.WriteError(w, r, apperr.Validation(err.Error()))
		return
	}
	lang := query.Get("lang")
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	zones, err := leaguesSvc.ZonesByCity(ctx, city, models.ParseLocale(lang))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if zones == nil {
		zones = []leagues.ZoneView{}
	}
	writeJSON(w, r, http.StatusOK, zones)
}

// GET /api/groups/{id}/standings
func HandleGroupStandings(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	standings, err := leaguesSvc.GroupStandings(ctx, groupID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"groupId": groupID, "data": standings})
}

// GET /api/user/matches/upcoming
func HandleUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	matches, err := leaguesSvc.ListUpcomingForUser(ctx, user.ID, timeNow())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if matches == nil {
		matches = []leagues.MatchView{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": matches, "count": len(matches)})
}

// POST /api/user/matches/{id}/report
func HandleReportResult(w http.ResponseWriter, r *http.Request) {
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	matchID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		apiutil.WriteError(w, r, apperr.Validation("homeScore and awayScore are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	now := timeNow()
	match, err := leaguesSvc.ReportResult(ctx, leagues.ReportResultInput{
		MatchID:   matchID,
		UserID:    user.ID,
		HomeScore: *req.HomeScore,
		AwayScore: *req.AwayScore,
	}, now)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("match_id", match.ID).Int64("user_id", user.ID).Msg("Match result reported")
	writeJSON(w, r, http.StatusOK, leagues.NewMatchRecord(match, now))
}

// POST /api/user/matches/{id}/confirm
func HandleConfirmResult(w http.ResponseWriter, r *http.Request) {
	user := apiutil.RequireUser(w, r)
	if user == nil {
		return
	}
	matchID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	now := timeNow()
	match, err := leaguesSvc.ConfirmResult(ctx, matchID, user.ID, authz.IsAdmin(user), now)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("match_id", match.ID).Int64("user_id", user.ID).Msg("Match result confirmed")
	writeJSON(w, r, http.StatusOK, leagues.NewMatchRecord(match, now))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
