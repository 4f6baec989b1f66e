package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/apperr"
	appdb "github.com/codr1/golfleague/internal/db"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/email"
	"github.com/codr1/golfleague/internal/models"
)

var ErrMatchNotFound = apperr.NotFound("Match not found")

type CreateMatchInput struct {
	GroupID      int64
	HomePlayerID int64
	AwayPlayerID int64
	RoundNumber  int64
	DeadlineDate time.Time
	MatchDate    *time.Time
}

type PlayerSummary struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Handicap  *float64 `json:"handicap,omitempty"`
}

// MatchView is an upcoming match seen from one participant.
type MatchView struct {
	ID              int64              `json:"id"`
	GroupID         int64              `json:"groupId"`
	GroupName       string             `json:"groupName"`
	CompetitionID   int64              `json:"competitionId"`
	CompetitionName string             `json:"competitionName"`
	RoundNumber     int64              `json:"roundNumber"`
	Status          models.MatchStatus `json:"status"`
	DeadlineDate    time.Time          `json:"deadlineDate"`
	MatchDate       *time.Time         `json:"matchDate"`
	IsHome          bool               `json:"isHome"`
	Opponent        PlayerSummary      `json:"opponent"`
	CanReportResult bool               `json:"canReportResult"`
}

type ReportResultInput struct {
	MatchID   int64
	UserID    int64
	HomeScore int64
	AwayScore int64
}

// EffectiveStatus derives EXPIRED for a pending match past its deadline.
func EffectiveStatus(match dbgen.Match, now time.Time) models.MatchStatus {
	return effectiveStatus(match.Status, match.DeadlineDate, now)
}

func effectiveStatus(status string, deadline, now time.Time) models.MatchStatus {
	s := models.MatchStatus(status)
	if s == models.MatchStatusPending && deadline.Before(now) {
		return models.MatchStatusExpired
	}
	return s
}

// CanReportResult holds when the match is still pending and has been played.
func CanReportResult(match dbgen.Match, now time.Time) bool {
	return canReportResult(match.Status, match.DeadlineDate, match.MatchDate, now)
}

func canReportResult(status string, deadline time.Time, matchDate sql.NullTime, now time.Time) bool {
	if effectiveStatus(status, deadline, now) != models.MatchStatusPending {
		return false
	}
	return matchDate.Valid && !matchDate.Time.After(now)
}

func (s *Service) CreateMatch(ctx context.Context, input CreateMatchInput) (dbgen.Match, error) {
	if input.GroupID <= 0 {
		return dbgen.Match{}, apperr.Validation("groupId is required")
	}
	if input.HomePlayerID <= 0 || input.AwayPlayerID <= 0 {
		return dbgen.Match{}, apperr.Validation("homePlayerId and awayPlayerId are required")
	}
	if input.HomePlayerID == input.AwayPlayerID {
		return dbgen.Match{}, apperr.Validation("a player cannot play against themselves")
	}
	if input.DeadlineDate.IsZero() {
		return dbgen.Match{}, apperr.Validation("deadlineDate is required")
	}
	round := input.RoundNumber
	if round == 0 {
		round = 1
	}
	if round < 1 {
		return dbgen.Match{}, apperr.Validation("roundNumber must be 1 or greater")
	}

	if _, err := s.db.Queries.GetGroup(ctx, input.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Match{}, apperr.NotFound("Group not found")
		}
		return dbgen.Match{}, fmt.Errorf("load group: %w", err)
	}
	for _, playerID := range []int64{input.HomePlayerID, input.AwayPlayerID} {
		count, err := s.db.Queries.CountGroupAssignment(ctx, dbgen.CountGroupAssignmentParams{
			PlayerID: playerID,
			GroupID:  input.GroupID,
		})
		if err != nil {
			return dbgen.Match{}, fmt.Errorf("check assignment: %w", err)
		}
		if count == 0 {
			return dbgen.Match{}, apperr.Validation(fmt.Sprintf("player %d is not assigned to this group", playerID))
		}
	}

	params := dbgen.CreateMatchParams{
		GroupID:      input.GroupID,
		HomePlayerID: input.HomePlayerID,
		AwayPlayerID: input.AwayPlayerID,
		RoundNumber:  round,
		DeadlineDate: input.DeadlineDate.UTC(),
	}
	if input.MatchDate != nil {
		params.MatchDate = sql.NullTime{Time: input.MatchDate.UTC(), Valid: true}
	}
	match, err := s.db.Queries.CreateMatch(ctx, params)
	if err != nil {
		if appdb.IsCheckViolation(err) {
			return dbgen.Match{}, apperr.Wrap(apperr.KindValidation, "invalid match fields", err)
		}
		return dbgen.Match{}, fmt.Errorf("create match: %w", err)
	}
	return match, nil
}

// ListUpcomingForUser returns the caller's pending matches whose deadline
// has not passed, soonest first.
func (s *Service) ListUpcomingForUser(ctx context.Context, userID int64, now time.Time) ([]MatchView, error) {
	rows, err := s.db.Queries.ListUpcomingMatchesForUser(ctx, dbgen.ListUpcomingMatchesForUserParams{
		UserID: userID,
		Now:    now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}

	views := make([]MatchView, 0, len(rows))
	for _, row := range rows {
		isHome := row.HomePlayerID == userID
		opponent := PlayerSummary{
			ID:        row.AwayPlayerID,
			FirstName: row.AwayFirstName,
			LastName:  row.AwayLastName,
			Handicap:  nullFloat(row.AwayHandicap),
		}
		if !isHome {
			opponent = PlayerSummary{
				ID:        row.HomePlayerID,
				FirstName: row.HomeFirstName,
				LastName:  row.HomeLastName,
				Handicap:  nullFloat(row.HomeHandicap),
			}
		}

		view := MatchView{
			ID:              row.ID,
			GroupID:         row.GroupID,
			GroupName:       row.GroupName,
			CompetitionID:   row.CompetitionID,
			CompetitionName: row.CompetitionName,
			RoundNumber:     row.RoundNumber,
			Status:          effectiveStatus(row.Status, row.DeadlineDate, now),
			DeadlineDate:    row.DeadlineDate,
			IsHome:          isHome,
			Opponent:        opponent,
			CanReportResult: canReportResult(row.Status, row.DeadlineDate, row.MatchDate, now),
		}
		if row.MatchDate.Valid {
			matchDate := row.MatchDate.Time
			view.MatchDate = &matchDate
		}
		views = append(views, view)
	}
	return views, nil
}

// ReportResult records a score submitted by one of the two players and
// notifies the opponent.
func (s *Service) ReportResult(ctx context.Context, input ReportResultInput, now time.Time) (dbgen.Match, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return dbgen.Match{}, apperr.Validation("scores must be 0 or greater")
	}

	match, err := s.getMatch(ctx, input.MatchID)
	if err != nil {
		return dbgen.Match{}, err
	}
	if input.UserID != match.HomePlayerID && input.UserID != match.AwayPlayerID {
		return dbgen.Match{}, apperr.Forbidden("Only the players of this match can report its result")
	}
	if models.MatchStatus(match.Status) != models.MatchStatusPending {
		return dbgen.Match{}, apperr.Conflict("Match result already reported", nil)
	}
	if !CanReportResult(match, now) {
		return dbgen.Match{}, apperr.Validation("match result cannot be reported")
	}

	reportedAt := now.UTC()
	updated, err := s.db.Queries.ReportMatchResult(ctx, dbgen.ReportMatchResultParams{
		HomeScore:  input.HomeScore,
		AwayScore:  input.AwayScore,
		ReportedBy: input.UserID,
		ReportedAt: reportedAt,
		ID:         match.ID,
	})
	if err != nil {
		return dbgen.Match{}, fmt.Errorf("report match result: %w", err)
	}
	if updated == 0 {
		return dbgen.Match{}, apperr.Conflict("Match result already reported", nil)
	}

	reported, err := s.getMatch(ctx, match.ID)
	if err != nil {
		return dbgen.Match{}, err
	}
	s.notifyOpponent(ctx, reported)
	return reported, nil
}

// ConfirmResult accepts a reported score. Only the player who did not report
// it, or an admin, may confirm.
func (s *Service) ConfirmResult(ctx context.Context, matchID, userID int64, isAdmin bool, now time.Time) (dbgen.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return dbgen.Match{}, err
	}
	if models.MatchStatus(match.Status) != models.MatchStatusReported {
		return dbgen.Match{}, apperr.Conflict("Match has no result awaiting confirmation", nil)
	}
	if !isAdmin {
		participant := userID == match.HomePlayerID || userID == match.AwayPlayerID
		if !participant {
			return dbgen.Match{}, apperr.Forbidden("Only the players of this match can confirm its result")
		}
		if match.ReportedBy.Valid && match.ReportedBy.Int64 == userID {
			return dbgen.Match{}, apperr.Forbidden("The opponent must confirm the reported result")
		}
	}

	updated, err := s.db.Queries.ConfirmMatchResult(ctx, dbgen.ConfirmMatchResultParams{
		ConfirmedAt: now.UTC(),
		ID:          match.ID,
	})
	if err != nil {
		return dbgen.Match{}, fmt.Errorf("confirm match result: %w", err)
	}
	if updated == 0 {
		return dbgen.Match{}, apperr.Conflict("Match has no result awaiting confirmation", nil)
	}
	return s.getMatch(ctx, match.ID)
}

func (s *Service) getMatch(ctx context.Context, id int64) (dbgen.Match, error) {
	match, err := s.db.Queries.GetMatch(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Match{}, ErrMatchNotFound
		}
		return dbgen.Match{}, fmt.Errorf("load match: %w", err)
	}
	return match, nil
}

func (s *Service) notifyOpponent(ctx context.Context, match dbgen.Match) {
	if s.notifier == nil || !match.ReportedBy.Valid {
		return
	}
	logger := log.Ctx(ctx)

	reporterID := match.ReportedBy.Int64
	opponentID := match.AwayPlayerID
	if reporterID == match.AwayPlayerID {
		opponentID = match.HomePlayerID
	}
	reporter, err := s.db.Queries.GetUserByID(ctx, reporterID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to load match reporter")
		return
	}
	opponent, err := s.db.Queries.GetUserByID(ctx, opponentID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to load match opponent")
		return
	}
	group, err := s.db.Queries.GetGroup(ctx, match.GroupID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to load match group")
		return
	}

	s.notifier.NotifyMatchReported(ctx, opponent.Email, email.MatchReportedDetails{
		ReporterName: fullName(reporter.FirstName, reporter.LastName),
		OpponentName: fullName(opponent.FirstName, opponent.LastName),
		GroupName:    group.Name,
		Round:        match.RoundNumber,
		Result:       fmt.Sprintf("%d - %d", match.HomeScore.Int64, match.AwayScore.Int64),
	})
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// MatchRecord is the client-facing form of a stored match.
type MatchRecord struct {
	ID           int64              `json:"id"`
	GroupID      int64              `json:"groupId"`
	HomePlayerID int64              `json:"homePlayerId"`
	AwayPlayerID int64              `json:"awayPlayerId"`
	Status       models.MatchStatus `json:"status"`
	RoundNumber  int64              `json:"roundNumber"`
	DeadlineDate time.Time          `json:"deadlineDate"`
	MatchDate    *time.Time         `json:"matchDate"`
	HomeScore    *int64             `json:"homeScore"`
	AwayScore    *int64             `json:"awayScore"`
	ReportedBy   *int64             `json:"reportedBy"`
	ReportedAt   *time.Time         `json:"reportedAt"`
	ConfirmedAt  *time.Time         `json:"confirmedAt"`
}

// NewMatchRecord converts match, deriving its effective status at now.
func NewMatchRecord(match dbgen.Match, now time.Time) MatchRecord {
	return MatchRecord{
		ID:           match.ID,
		GroupID:      match.GroupID,
		HomePlayerID: match.HomePlayerID,
		AwayPlayerID: match.AwayPlayerID,
		Status:       EffectiveStatus(match, now),
		RoundNumber:  match.RoundNumber,
		DeadlineDate: match.DeadlineDate,
		MatchDate:    nullTime(match.MatchDate),
		HomeScore:    nullInt64(match.HomeScore),
		AwayScore:    nullInt64(match.AwayScore),
		ReportedBy:   nullInt64(match.ReportedBy),
		ReportedAt:   nullTime(match.ReportedAt),
		ConfirmedAt:  nullTime(match.ConfirmedAt),
	}
}

func nullInt64(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func nullTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}
