package dbgen

import (
	"context"
	"time"
)

const competitionColumns = `id, name, city, type, status, start_date, end_date, is_active, price_cents, created_at, updated_at`

func scanCompetition(row interface{ Scan(...any) error }) (Competition, error) {
	var i Competition
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.City,
		&i.Type,
		&i.Status,
		&i.StartDate,
		&i.EndDate,
		&i.IsActive,
		&i.PriceCents,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createCompetition = `-- name: CreateCompetition :execresult
INSERT INTO competitions (name, city, type, status, start_date, end_date, is_active, price_cents)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateCompetitionParams struct {
	Name       string
	City       string
	Type       string
	Status     string
	StartDate  time.Time
	EndDate    time.Time
	IsActive   bool
	PriceCents int64
}

func (q *Queries) CreateCompetition(ctx context.Context, arg CreateCompetitionParams) (Competition, error) {
	result, err := q.db.ExecContext(ctx, createCompetition,
		arg.Name,
		arg.City,
		arg.Type,
		arg.Status,
		arg.StartDate,
		arg.EndDate,
		arg.IsActive,
		arg.PriceCents,
	)
	if err != nil {
		return Competition{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Competition{}, err
	}
	return q.GetCompetition(ctx, id)
}

const getCompetition = `-- name: GetCompetition :one
SELECT ` + competitionColumns + ` FROM competitions WHERE id = ?`

func (q *Queries) GetCompetition(ctx context.Context, id int64) (Competition, error) {
	row := q.db.QueryRowContext(ctx, getCompetition, id)
	return scanCompetition(row)
}

const listActiveCities = `-- name: ListActiveCities :many
SELECT DISTINCT city FROM competitions WHERE is_active = 1 ORDER BY city`

func (q *Queries) ListActiveCities(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listActiveCities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		items = append(items, city)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findActiveCompetitionByCity = `-- name: FindActiveCompetitionByCity :one
SELECT ` + competitionColumns + `
FROM competitions
WHERE city = ? AND is_active = 1 AND start_date <= ? AND end_date >= ?
ORDER BY created_at DESC, id DESC
LIMIT 1`

type FindActiveCompetitionByCityParams struct {
	City string
	Now  time.Time
}

func (q *Queries) FindActiveCompetitionByCity(ctx context.Context, arg FindActiveCompetitionByCityParams) (Competition, error) {
	row := q.db.QueryRowContext(ctx, findActiveCompetitionByCity, arg.City, arg.Now, arg.Now)
	return scanCompetition(row)
}

const findActiveCompetition = `-- name: FindActiveCompetition :one
SELECT ` + competitionColumns + `
FROM competitions
WHERE is_active = 1 AND start_date <= ? AND end_date >= ?
ORDER BY created_at DESC, id DESC
LIMIT 1`

func (q *Queries) FindActiveCompetition(ctx context.Context, now time.Time) (Competition, error) {
	row := q.db.QueryRowContext(ctx, findActiveCompetition, now, now)
	return scanCompetition(row)
}

const listCompetitionSummaries = `-- name: ListCompetitionSummaries :many
SELECT
    c.id, c.name, c.city, c.type, c.status, c.start_date, c.end_date, c.is_active, c.price_cents, c.created_at, c.updated_at,
    (SELECT COUNT(*) FROM competition_players cp WHERE cp.competition_id = c.id AND cp.is_active = 1) AS player_count,
    (SELECT COUNT(*) FROM player_groups g WHERE g.competition_id = c.id) AS group_count,
    (SELECT COUNT(*) FROM matches m JOIN player_groups g ON g.id = m.group_id WHERE g.competition_id = c.id) AS match_count
FROM competitions c
ORDER BY c.start_date DESC, c.id DESC`

type ListCompetitionSummariesRow struct {
	Competition
	PlayerCount int64
	GroupCount  int64
	MatchCount  int64
}

func (q *Queries) ListCompetitionSummaries(ctx context.Context) ([]ListCompetitionSummariesRow, error) {
	rows, err := q.db.QueryContext(ctx, listCompetitionSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCompetitionSummariesRow{}
	for rows.Next() {
		var i ListCompetitionSummariesRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.City,
			&i.Type,
			&i.Status,
			&i.StartDate,
			&i.EndDate,
			&i.IsActive,
			&i.PriceCents,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.PlayerCount,
			&i.GroupCount,
			&i.MatchCount,
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

const setCompetitionActive = `-- name: SetCompetitionActive :execrows
UPDATE competitions SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

type SetCompetitionActiveParams struct {
	IsActive bool
	ID       int64
}

func (q *Queries) SetCompetitionActive(ctx context.Context, arg SetCompetitionActiveParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setCompetitionActive, arg.IsActive, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCompetition = `-- name: DeleteCompetition :execrows
DELETE FROM competitions WHERE id = ?`

func (q *Queries) DeleteCompetition(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCompetition, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
