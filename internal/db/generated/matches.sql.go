package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const matchColumns = `id, group_id, home_player_id, away_player_id, status, round_number, deadline_date, match_date, home_score, away_score, reported_by, reported_at, confirmed_at, created_at`

func scanMatch(row interface{ Scan(...any) error }) (Match, error) {
	var i Match
	err := row.Scan(
		&i.ID,
		&i.GroupID,
		&i.HomePlayerID,
		&i.AwayPlayerID,
		&i.Status,
		&i.RoundNumber,
		&i.DeadlineDate,
		&i.MatchDate,
		&i.HomeScore,
		&i.AwayScore,
		&i.ReportedBy,
		&i.ReportedAt,
		&i.ConfirmedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createMatch = `-- name: CreateMatch :execresult
INSERT INTO matches (group_id, home_player_id, away_player_id, status, round_number, deadline_date, match_date)
VALUES (?, ?, ?, 'PENDING', ?, ?, ?)`

type CreateMatchParams struct {
	GroupID      int64
	HomePlayerID int64
	AwayPlayerID int64
	RoundNumber  int64
	DeadlineDate time.Time
	MatchDate    sql.NullTime
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error) {
	result, err := q.db.ExecContext(ctx, createMatch,
		arg.GroupID,
		arg.HomePlayerID,
		arg.AwayPlayerID,
		arg.RoundNumber,
		arg.DeadlineDate,
		arg.MatchDate,
	)
	if err != nil {
		return Match{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Match{}, err
	}
	return q.GetMatch(ctx, id)
}

const getMatch = `-- name: GetMatch :one
SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

func (q *Queries) GetMatch(ctx context.Context, id int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	return scanMatch(row)
}

const listUpcomingMatchesForUser = `-- name: ListUpcomingMatchesForUser :many
SELECT
    m.id, m.group_id, m.home_player_id, m.away_player_id, m.status, m.round_number, m.deadline_date, m.match_date,
    g.name AS group_name, c.id AS competition_id, c.name AS competition_name,
    hu.first_name AS home_first_name, hu.last_name AS home_last_name, hu.handicap AS home_handicap,
    au.first_name AS away_first_name, au.last_name AS away_last_name, au.handicap AS away_handicap
FROM matches m
JOIN player_groups g ON g.id = m.group_id
JOIN competitions c ON c.id = g.competition_id
JOIN users hu ON hu.id = m.home_player_id
JOIN users au ON au.id = m.away_player_id
WHERE (m.home_player_id = ? OR m.away_player_id = ?)
  AND m.status = 'PENDING'
  AND m.deadline_date >= ?
ORDER BY m.deadline_date ASC, m.id ASC`

type ListUpcomingMatchesForUserParams struct {
	UserID int64
	Now    time.Time
}

type ListUpcomingMatchesForUserRow struct {
	ID              int64
	GroupID         int64
	HomePlayerID    int64
	AwayPlayerID    int64
	Status          string
	RoundNumber     int64
	DeadlineDate    time.Time
	MatchDate       sql.NullTime
	GroupName       string
	CompetitionID   int64
	CompetitionName string
	HomeFirstName   string
	HomeLastName    string
	HomeHandicap    sql.NullFloat64
	AwayFirstName   string
	AwayLastName    string
	AwayHandicap    sql.NullFloat64
}

func (q *Queries) ListUpcomingMatchesForUser(ctx context.Context, arg ListUpcomingMatchesForUserParams) ([]ListUpcomingMatchesForUserRow, error) {
	rows, err := q.db.QueryContext(ctx, listUpcomingMatchesForUser, arg.UserID, arg.UserID, arg.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListUpcomingMatchesForUserRow{}
	for rows.Next() {
		var i ListUpcomingMatchesForUserRow
		if err := rows.Scan(
			&i.ID,
			&i.GroupID,
			&i.HomePlayerID,
			&i.AwayPlayerID,
			&i.Status,
			&i.RoundNumber,
			&i.DeadlineDate,
			&i.MatchDate,
			&i.GroupName,
			&i.CompetitionID,
			&i.CompetitionName,
			&i.HomeFirstName,
			&i.HomeLastName,
			&i.HomeHandicap,
			&i.AwayFirstName,
			&i.AwayLastName,
			&i.AwayHandicap,
		); err != nil {
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

const reportMatchResult = `-- name: ReportMatchResult :execrows
UPDATE matches
SET status = 'REPORTED', home_score = ?, away_score = ?, reported_by = ?, reported_at = ?
WHERE id = ? AND status = 'PENDING'`

type ReportMatchResultParams struct {
	HomeScore  int64
	AwayScore  int64
	ReportedBy int64
	ReportedAt time.Time
	ID         int64
}

func (q *Queries) ReportMatchResult(ctx context.Context, arg ReportMatchResultParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, reportMatchResult,
		arg.HomeScore,
		arg.AwayScore,
		arg.ReportedBy,
		arg.ReportedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const confirmMatchResult = `-- name: ConfirmMatchResult :execrows
UPDATE matches SET status = 'CONFIRMED', confirmed_at = ? WHERE id = ? AND status = 'REPORTED'`

type ConfirmMatchResultParams struct {
	ConfirmedAt time.Time
	ID          int64
}

func (q *Queries) ConfirmMatchResult(ctx context.Context, arg ConfirmMatchResultParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, confirmMatchResult, arg.ConfirmedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listConfirmedMatchesByGroup = `-- name: ListConfirmedMatchesByGroup :many
SELECT ` + matchColumns + ` FROM matches WHERE group_id = ? AND status = 'CONFIRMED' ORDER BY round_number, id`

func (q *Queries) ListConfirmedMatchesByGroup(ctx context.Context, groupID int64) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listConfirmedMatchesByGroup, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Match{}
	for rows.Next() {
		i, err := scanMatch(rows)
		if err != nil {
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
