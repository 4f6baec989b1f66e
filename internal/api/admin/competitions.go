package admin

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/apperr"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/leagues"
)

type competitionRequest struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	IsActive   bool   `json:"isActive"`
	PriceCents int64  `json:"priceCents"`
}

type activeRequest struct {
	IsActive *bool `json:"isActive"`
}

type playerRequest struct {
	PlayerID int64 `json:"playerId"`
}

type groupRequest struct {
	Name     string `json:"name"`
	LeagueID *int64 `json:"leagueId"`
}

type matchRequest struct {
	HomePlayerID int64   `json:"homePlayerId"`
	AwayPlayerID int64   `json:"awayPlayerId"`
	RoundNumber  int64   `json:"roundNumber"`
	DeadlineDate string  `json:"deadlineDate"`
	MatchDate    *string `json:"matchDate"`
}

type zoneRequest struct {
	Code     string `json:"code"`
	City     string `json:"city"`
	LabelES  string `json:"labelEs"`
	LabelEN  string `json:"labelEn"`
	IsActive *bool  `json:"isActive"`
}

type leagueRequest struct {
	CompetitionID int64  `json:"competitionId"`
	ZoneID        *int64 `json:"zoneId"`
	Name          string `json:"name"`
	Level         int64  `json:"level"`
}

type groupResponse struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competitionId"`
	LeagueID      *int64    `json:"leagueId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
}

type leagueResponse struct {
	ID            int64  `json:"id"`
	CompetitionID int64  `json:"competitionId"`
	ZoneID        *int64 `json:"zoneId"`
	Name          string `json:"name"`
	Level         int64  `json:"level"`
}

// /api/admin/competitions
func HandleListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	summaries, err := leaguesSvc.ListCompetitionsWithAggregates(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": summaries, "count": len(summaries)})
}

// POST /api/admin/competitions
func HandleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	startDate, err := apiutil.ParseDate(req.StartDate, "startDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	endDate, err := apiutil.ParseDate(req.EndDate, "endDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	competition, err := leaguesSvc.CreateCompetition(ctx, leagues.CreateCompetitionInput{
		Name:       req.Name,
		City:       req.City,
		Type:       req.Type,
		Status:     req.Status,
		StartDate:  startDate,
		EndDate:    endDate,
		IsActive:   req.IsActive,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int64("competition_id", competition.ID).Str("city", competition.City).Msg("Competition created")
	writeJSON(w, r, http.StatusCreated, competition)
}

// PUT /api/admin/competitions/{id}/active
func HandleSetCompetitionActive(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req activeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.IsActive == nil {
		apiutil.WriteError(w, r, apperr.Validation("isActive is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	competition, err := leaguesSvc.SetCompetitionActive(ctx, id, *req.IsActive)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("competition_id", id).Bool("is_active", competition.IsActive).Msg("Competition active flag updated")
	writeJSON(w, r, http.StatusOK, competition)
}

// DELETE /api/admin/competitions/{id}
func HandleDeleteCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	if err := leaguesSvc.DeleteCompetition(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("competition_id", id).Msg("Competition deleted")
	writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/admin/competitions/{id}/players
func HandleEnrollPlayer(w http.ResponseWriter, r *http.Request) {
	competitionID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	enrollment, err := leaguesSvc.EnrollPlayer(ctx, competitionID, req.PlayerID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, enrollment)
}

// POST /api/admin/competitions/{id}/groups
func HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	competitionID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req groupRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	group, err := leaguesSvc.CreateGroup(ctx, competitionID, req.LeagueID, req.Name)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toGroupResponse(group))
}

// POST /api/admin/groups/{id}/players
func HandleAssignPlayer(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	assignment, err := leaguesSvc.AssignPlayerToGroup(ctx, req.PlayerID, groupID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, assignment)
}

// GET /api/admin/groups/{id}/players
func HandleListGroupPlayers(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	players, err := leaguesSvc.ListGroupPlayers(ctx, groupID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"data": players, "count": len(players)})
}

// POST /api/admin/groups/{id}/matches
func HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req matchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	deadline, err := apiutil.ParseDate(req.DeadlineDate, "deadlineDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	matchDate, err := apiutil.ParseOptionalDate(req.MatchDate, "matchDate")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	match, err := leaguesSvc.CreateMatch(ctx, leagues.CreateMatchInput{
		GroupID:      groupID,
		HomePlayerID: req.HomePlayerID,
		AwayPlayerID: req.AwayPlayerID,
		RoundNumber:  req.RoundNumber,
		DeadlineDate: deadline,
		MatchDate:    matchDate,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().Int64("match_id", match.ID).Int64("group_id", groupID).Msg("Match created")
	writeJSON(w, r, http.StatusCreated, leagues.NewMatchRecord(match, time.Now()))
}

// GET /api/admin/zones
func HandleListZones(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	zones, err := leaguesSvc.ListZones(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if zones == nil {
		zones = []dbgen.Zone{}
	}
	writeJSON(w, r, http.StatusOK, zones)
}

// POST /api/admin/zones
func HandleCreateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	zone, err := leaguesSvc.CreateZone(ctx, leagues.CreateZoneInput{
		Code:     req.Code,
		City:     req.City,
		LabelES:  req.LabelES,
		LabelEN:  req.LabelEN,
		IsActive: isActive,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, zone)
}

// GET /api/admin/leagues
func HandleListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	views, err := leaguesSvc.ListLeagues(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, views)
}

// POST /api/admin/leagues
func HandleCreateLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), adminQueryTimeout)
	defer cancel()

	league, err := leaguesSvc.CreateLeague(ctx, leagues.CreateLeagueInput{
		CompetitionID: req.CompetitionID,
		ZoneID:        req.ZoneID,
		Name:          req.Name,
		Level:         req.Level,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, leagueResponse{
		ID:            league.ID,
		CompetitionID: league.CompetitionID,
		ZoneID:        nullInt64Ptr(league.ZoneID),
		Name:          league.Name,
		Level:         league.Level,
	})
}

func toGroupResponse(group dbgen.PlayerGroup) groupResponse {
	return groupResponse{
		ID:            group.ID,
		CompetitionID: group.CompetitionID,
		LeagueID:      nullInt64Ptr(group.LeagueID),
		Name:          group.Name,
		CreatedAt:     group.CreatedAt,
	}
}

func nullInt64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
