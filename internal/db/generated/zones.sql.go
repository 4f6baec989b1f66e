package dbgen

import (
	"context"
	"database/sql"
)

const zoneColumns = `id, code, city, label_es, label_en, is_active, created_at`

func scanZone(row interface{ Scan(...any) error }) (Zone, error) {
	var i Zone
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.City,
		&i.LabelEs,
		&i.LabelEn,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createZone = `-- name: CreateZone :execresult
INSERT INTO zones (code, city, label_es, label_en, is_active) VALUES (?, ?, ?, ?, ?)`

type CreateZoneParams struct {
	Code     string
	City     string
	LabelEs  string
	LabelEn  string
	IsActive bool
}

func (q *Queries) CreateZone(ctx context.Context, arg CreateZoneParams) (Zone, error) {
	result, err := q.db.ExecContext(ctx, createZone, arg.Code, arg.City, arg.LabelEs, arg.LabelEn, arg.IsActive)
	if err != nil {
		return Zone{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Zone{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = ?`, id)
	return scanZone(row)
}

const listZones = `-- name: ListZones :many
SELECT ` + zoneColumns + ` FROM zones ORDER BY city, code`

func (q *Queries) ListZones(ctx context.Context) ([]Zone, error) {
	return q.listZones(ctx, listZones)
}

const listActiveZonesByCity = `-- name: ListActiveZonesByCity :many
SELECT ` + zoneColumns + ` FROM zones WHERE city = ? AND is_active = 1 ORDER BY code`

func (q *Queries) ListActiveZonesByCity(ctx context.Context, city string) ([]Zone, error) {
	return q.listZones(ctx, listActiveZonesByCity, city)
}

func (q *Queries) listZones(ctx context.Context, query string, args ...interface{}) ([]Zone, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Zone{}
	for rows.Next() {
		i, err := scanZone(rows)
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

const createLeague = `-- name: CreateLeague :execresult
INSERT INTO leagues (competition_id, zone_id, name, level) VALUES (?, ?, ?, ?)`

type CreateLeagueParams struct {
	CompetitionID int64
	ZoneID        sql.NullInt64
	Name          string
	Level         int64
}

func (q *Queries) CreateLeague(ctx context.Context, arg CreateLeagueParams) (League, error) {
	result, err := q.db.ExecContext(ctx, createLeague, arg.CompetitionID, arg.ZoneID, arg.Name, arg.Level)
	if err != nil {
		return League{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return League{}, err
	}
	return q.GetLeague(ctx, id)
}

const getLeague = `-- name: GetLeague :one
SELECT id, competition_id, zone_id, name, level, created_at FROM leagues WHERE id = ?`

func (q *Queries) GetLeague(ctx context.Context, id int64) (League, error) {
	row := q.db.QueryRowContext(ctx, getLeague, id)
	var i League
	err := row.Scan(&i.ID, &i.CompetitionID, &i.ZoneID, &i.Name, &i.Level, &i.CreatedAt)
	return i, err
}

const listLeagues = `-- name: ListLeagues :many
SELECT l.id, l.competition_id, l.zone_id, l.name, l.level, l.created_at,
    c.name AS competition_name, c.city AS competition_city, z.code AS zone_code
FROM leagues l
JOIN competitions c ON c.id = l.competition_id
LEFT JOIN zones z ON z.id = l.zone_id
ORDER BY c.start_date DESC, l.level, l.name`

type ListLeaguesRow struct {
	League
	CompetitionName string
	CompetitionCity string
	ZoneCode        sql.NullString
}

func (q *Queries) ListLeagues(ctx context.Context) ([]ListLeaguesRow, error) {
	rows, err := q.db.QueryContext(ctx, listLeagues)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListLeaguesRow{}
	for rows.Next() {
		var i ListLeaguesRow
		if err := rows.Scan(
			&i.ID,
			&i.CompetitionID,
			&i.ZoneID,
			&i.Name,
			&i.Level,
			&i.CreatedAt,
			&i.CompetitionName,
			&i.CompetitionCity,
			&i.ZoneCode,
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
