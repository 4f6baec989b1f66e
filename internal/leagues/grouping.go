package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codr1/golfleague/internal/apperr"
	appdb "github.com/codr1/golfleague/internal/db"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
)

type GroupPlayer struct {
	PlayerID   int64      `json:"playerId"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Handicap   *float64   `json:"handicap,omitempty"`
	AssignedAt *time.Time `json:"assignedAt,omitempty"`
}

func (s *Service) EnrollPlayer(ctx context.Context, competitionID, playerID int64) (dbgen.CompetitionPlayer, error) {
	if competitionID <= 0 || playerID <= 0 {
		return dbgen.CompetitionPlayer{}, apperr.Validation("competitionId and playerId are required")
	}
	enrollment, err := s.db.Queries.EnrollPlayer(ctx, dbgen.EnrollPlayerParams{
		CompetitionID: competitionID,
		PlayerID:      playerID,
	})
	if err != nil {
		switch {
		case appdb.IsUniqueViolation(err):
			return dbgen.CompetitionPlayer{}, apperr.Conflict("Player already enrolled in this competition", err)
		case appdb.IsForeignKeyViolation(err):
			return dbgen.CompetitionPlayer{}, apperr.NotFound("Competition or player not found")
		}
		return dbgen.CompetitionPlayer{}, fmt.Errorf("enroll player: %w", err)
	}
	return enrollment, nil
}

// CreateGroup adds a group to a competition. A league, when given, must
// belong to the same competition.
func (s *Service) CreateGroup(ctx context.Context, competitionID int64, leagueID *int64, name string) (dbgen.PlayerGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dbgen.PlayerGroup{}, apperr.Validation("name is required")
	}
	if competitionID <= 0 {
		return dbgen.PlayerGroup{}, apperr.Validation("competitionId is required")
	}

	params := dbgen.CreateGroupParams{CompetitionID: competitionID, Name: name}
	if leagueID != nil {
		league, err := s.db.Queries.GetLeague(ctx, *leagueID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return dbgen.PlayerGroup{}, apperr.NotFound("League not found")
			}
			return dbgen.PlayerGroup{}, fmt.Errorf("load league: %w", err)
		}
		if league.CompetitionID != competitionID {
			return dbgen.PlayerGroup{}, apperr.Validation("league belongs to a different competition")
		}
		params.LeagueID = sql.NullInt64{Int64: *leagueID, Valid: true}
	}

	group, err := s.db.Queries.CreateGroup(ctx, params)
	if err != nil {
		if appdb.IsForeignKeyViolation(err) {
			return dbgen.PlayerGroup{}, apperr.NotFound("Competition not found")
		}
		return dbgen.PlayerGroup{}, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

// AssignPlayerToGroup places a player in a group. The player must hold an
// active enrollment in the group's competition. A repeated assignment is
// rejected by the unique index and reported as a conflict.
func (s *Service) AssignPlayerToGroup(ctx context.Context, playerID, groupID int64) (dbgen.GroupAssignment, error) {
	if playerID <= 0 || groupID <= 0 {
		return dbgen.GroupAssignment{}, apperr.Validation("playerId and groupId are required")
	}

	group, err := s.db.Queries.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.GroupAssignment{}, apperr.NotFound("Group not found")
		}
		return dbgen.GroupAssignment{}, fmt.Errorf("load group: %w", err)
	}

	enrollment, err := s.db.Queries.GetCompetitionPlayer(ctx, dbgen.GetCompetitionPlayerParams{
		CompetitionID: group.CompetitionID,
		PlayerID:      playerID,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return dbgen.GroupAssignment{}, fmt.Errorf("load enrollment: %w", err)
	}
	if err != nil || !enrollment.IsActive {
		return dbgen.GroupAssignment{}, apperr.Validation("player is not enrolled in this competition")
	}

	assignment, err := s.db.Queries.CreateGroupAssignment(ctx, dbgen.CreateGroupAssignmentParams{
		PlayerID: playerID,
		GroupID:  groupID,
	})
	if err != nil {
		switch {
		case appdb.IsUniqueViolation(err):
			return dbgen.GroupAssignment{}, apperr.Conflict("Player already assigned to this group", err)
		case appdb.IsForeignKeyViolation(err):
			return dbgen.GroupAssignment{}, apperr.NotFound("Player or group not found")
		}
		return dbgen.GroupAssignment{}, fmt.Errorf("assign player: %w", err)
	}
	return assignment, nil
}

func (s *Service) ListGroupPlayers(ctx context.Context, groupID int64) ([]GroupPlayer, error) {
	if _, err := s.db.Queries.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Group not found")
		}
		return nil, fmt.Errorf("load group: %w", err)
	}
	rows, err := s.db.Queries.ListGroupPlayers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group players: %w", err)
	}
	players := make([]GroupPlayer, 0, len(rows))
	for _, row := range rows {
		player := GroupPlayer{
			PlayerID:  row.PlayerID,
			FirstName: row.FirstName,
			LastName:  row.LastName,
		}
		if row.Handicap.Valid {
			handicap := row.Handicap.Float64
			player.Handicap = &handicap
		}
		if row.AssignedAt.Valid {
			assignedAt := row.AssignedAt.Time
			player.AssignedAt = &assignedAt
		}
		players = append(players, player)
	}
	return players, nil
}
