package dbgen

import (
	"context"
	"database/sql"
)

const createGroup = `-- name: CreateGroup :execresult
INSERT INTO player_groups (competition_id, league_id, name) VALUES (?, ?, ?)`

type CreateGroupParams struct {
	CompetitionID int64
	LeagueID      sql.NullInt64
	Name          string
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) (PlayerGroup, error) {
	result, err := q.db.ExecContext(ctx, createGroup, arg.CompetitionID, arg.LeagueID, arg.Name)
	if err != nil {
		return PlayerGroup{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return PlayerGroup{}, err
	}
	return q.GetGroup(ctx, id)
}

const getGroup = `-- name: GetGroup :one
SELECT id, competition_id, league_id, name, created_at FROM player_groups WHERE id = ?`

func (q *Queries) GetGroup(ctx context.Context, id int64) (PlayerGroup, error) {
	row := q.db.QueryRowContext(ctx, getGroup, id)
	var i PlayerGroup
	err := row.Scan(&i.ID, &i.CompetitionID, &i.LeagueID, &i.Name, &i.CreatedAt)
	return i, err
}

const enrollPlayer = `-- name: EnrollPlayer :execresult
INSERT INTO competition_players (competition_id, player_id, registered_at, is_active) VALUES (?, ?, CURRENT_TIMESTAMP, 1)`

type EnrollPlayerParams struct {
	CompetitionID int64
	PlayerID      int64
}

func (q *Queries) EnrollPlayer(ctx context.Context, arg EnrollPlayerParams) (CompetitionPlayer, error) {
	if _, err := q.db.ExecContext(ctx, enrollPlayer, arg.CompetitionID, arg.PlayerID); err != nil {
		return CompetitionPlayer{}, err
	}
	return q.GetCompetitionPlayer(ctx, GetCompetitionPlayerParams(arg))
}

const getCompetitionPlayer = `-- name: GetCompetitionPlayer :one
SELECT id, competition_id, player_id, registered_at, is_active
FROM competition_players
WHERE competition_id = ? AND player_id = ?`

type GetCompetitionPlayerParams struct {
	CompetitionID int64
	PlayerID      int64
}

func (q *Queries) GetCompetitionPlayer(ctx context.Context, arg GetCompetitionPlayerParams) (CompetitionPlayer, error) {
	row := q.db.QueryRowContext(ctx, getCompetitionPlayer, arg.CompetitionID, arg.PlayerID)
	var i CompetitionPlayer
	err := row.Scan(&i.ID, &i.CompetitionID, &i.PlayerID, &i.RegisteredAt, &i.IsActive)
	return i, err
}

const createGroupAssignment = `-- name: CreateGroupAssignment :execresult
INSERT INTO group_assignments (player_id, group_id) VALUES (?, ?)`

type CreateGroupAssignmentParams struct {
	PlayerID int64
	GroupID  int64
}

func (q *Queries) CreateGroupAssignment(ctx context.Context, arg CreateGroupAssignmentParams) (GroupAssignment, error) {
	result, err := q.db.ExecContext(ctx, createGroupAssignment, arg.PlayerID, arg.GroupID)
	if err != nil {
		return GroupAssignment{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return GroupAssignment{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT id, player_id, group_id, assigned_at FROM group_assignments WHERE id = ?`, id)
	var i GroupAssignment
	err = row.Scan(&i.ID, &i.PlayerID, &i.GroupID, &i.AssignedAt)
	return i, err
}

const countGroupAssignment = `-- name: CountGroupAssignment :one
SELECT COUNT(*) FROM group_assignments WHERE player_id = ? AND group_id = ?`

type CountGroupAssignmentParams struct {
	PlayerID int64
	GroupID  int64
}

func (q *Queries) CountGroupAssignment(ctx context.Context, arg CountGroupAssignmentParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countGroupAssignment, arg.PlayerID, arg.GroupID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listGroupPlayers = `-- name: ListGroupPlayers :many
SELECT u.id, u.first_name, u.last_name, u.handicap, ga.assigned_at
FROM group_assignments ga
JOIN users u ON u.id = ga.player_id
WHERE ga.group_id = ?
ORDER BY u.last_name, u.first_name, u.id`

type ListGroupPlayersRow struct {
	PlayerID   int64
	FirstName  string
	LastName   string
	Handicap   sql.NullFloat64
	AssignedAt sql.NullTime
}

func (q *Queries) ListGroupPlayers(ctx context.Context, groupID int64) ([]ListGroupPlayersRow, error) {
	rows, err := q.db.QueryContext(ctx, listGroupPlayers, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListGroupPlayersRow{}
	for rows.Next() {
		var i ListGroupPlayersRow
		if err := rows.Scan(&i.PlayerID, &i.FirstName, &i.LastName, &i.Handicap, &i.AssignedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
