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
	"github.com/codr1/golfleague/internal/models"
)

var ErrNoActiveCompetition = apperr.NotFound("No active competition found")

// CompetitionSummary carries the aggregates shown in the admin listing.
type CompetitionSummary struct {
	dbgen.Competition
	PlayerCount int64 `json:"playerCount"`
	GroupCount  int64 `json:"groupCount"`
	MatchCount  int64 `json:"matchCount"`
}

type CreateCompetitionInput struct {
	Name       string
	City       string
	Type       string
	Status     string
	StartDate  time.Time
	EndDate    time.Time
	IsActive   bool
	PriceCents int64
}

// ZoneView is a zone with its label resolved for one locale.
type ZoneView struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	City  string `json:"city"`
	Label string `json:"label"`
}

type CreateZoneInput struct {
	Code     string
	City     string
	LabelES  string
	LabelEN  string
	IsActive bool
}

type CreateLeagueInput struct {
	CompetitionID int64
	ZoneID        *int64
	Name          string
	Level         int64
}

type LeagueView struct {
	ID              int64  `json:"id"`
	CompetitionID   int64  `json:"competitionId"`
	CompetitionName string `json:"competitionName"`
	City            string `json:"city"`
	ZoneID          *int64 `json:"zoneId,omitempty"`
	ZoneCode        string `json:"zoneCode,omitempty"`
	Name            string `json:"name"`
	Level           int64  `json:"level"`
}

// ListActiveCities returns the cities with at least one competition flagged
// active, sorted.
func (s *Service) ListActiveCities(ctx context.Context) ([]models.City, error) {
	rows, err := s.db.Queries.ListActiveCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active cities: %w", err)
	}
	cities := make([]models.City, 0, len(rows))
	for _, city := range rows {
		cities = append(cities, models.City(city))
	}
	return cities, nil
}

// FindActiveCompetition returns the active competition in city whose date
// window contains now. When several qualify the most recently created wins.
func (s *Service) FindActiveCompetition(ctx context.Context, city models.City, now time.Time) (dbgen.Competition, error) {
	competition, err := s.db.Queries.FindActiveCompetitionByCity(ctx, dbgen.FindActiveCompetitionByCityParams{
		City: string(city),
		Now:  now.UTC(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Competition{}, ErrNoActiveCompetition
		}
		return dbgen.Competition{}, fmt.Errorf("find active competition: %w", err)
	}
	return competition, nil
}

// FindGlobalActiveCompetition is FindActiveCompetition across all cities.
func (s *Service) FindGlobalActiveCompetition(ctx context.Context, now time.Time) (dbgen.Competition, error) {
	competition, err := s.db.Queries.FindActiveCompetition(ctx, now.UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Competition{}, ErrNoActiveCompetition
		}
		return dbgen.Competition{}, fmt.Errorf("find active competition: %w", err)
	}
	return competition, nil
}

func (s *Service) ListCompetitionsWithAggregates(ctx context.Context) ([]CompetitionSummary, error) {
	rows, err := s.db.Queries.ListCompetitionSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	summaries := make([]CompetitionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, CompetitionSummary{
			Competition: row.Competition,
			PlayerCount: row.PlayerCount,
			GroupCount:  row.GroupCount,
			MatchCount:  row.MatchCount,
		})
	}
	return summaries, nil
}

func (s *Service) CreateCompetition(ctx context.Context, input CreateCompetitionInput) (dbgen.Competition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return dbgen.Competition{}, apperr.Validation("name is required")
	}
	city, err := models.ParseCity(input.City)
	if err != nil {
		return dbgen.Competition{}, apperr.Validation(err.Error())
	}
	competitionType, err := models.ParseCompetitionType(input.Type)
	if err != nil {
		return dbgen.Competition{}, apperr.Validation(err.Error())
	}
	status, err := models.ParseCompetitionStatus(input.Status)
	if err != nil {
		return dbgen.Competition{}, apperr.Validation(err.Error())
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return dbgen.Competition{}, apperr.Validation("start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return dbgen.Competition{}, apperr.Validation("end date must be on or after start date")
	}
	if input.PriceCents < 0 {
		return dbgen.Competition{}, apperr.Validation("price must be 0 or greater")
	}

	competition, err := s.db.Queries.CreateCompetition(ctx, dbgen.CreateCompetitionParams{
		Name:       name,
		City:       string(city),
		Type:       string(competitionType),
		Status:     string(status),
		StartDate:  input.StartDate.UTC(),
		EndDate:    input.EndDate.UTC(),
		IsActive:   input.IsActive,
		PriceCents: input.PriceCents,
	})
	if err != nil {
		switch {
		case appdb.IsUniqueViolation(err):
			return dbgen.Competition{}, apperr.Conflict("A competition with this name, city and start date already exists", err)
		case appdb.IsCheckViolation(err):
			return dbgen.Competition{}, apperr.Wrap(apperr.KindValidation, "invalid competition fields", err)
		}
		return dbgen.Competition{}, fmt.Errorf("create competition: %w", err)
	}
	return competition, nil
}

func (s *Service) SetCompetitionActive(ctx context.Context, id int64, active bool) (dbgen.Competition, error) {
	updated, err := s.db.Queries.SetCompetitionActive(ctx, dbgen.SetCompetitionActiveParams{IsActive: active, ID: id})
	if err != nil {
		return dbgen.Competition{}, fmt.Errorf("set competition active: %w", err)
	}
	if updated == 0 {
		return dbgen.Competition{}, apperr.NotFound("Competition not found")
	}
	return s.db.Queries.GetCompetition(ctx, id)
}

// DeleteCompetition removes the competition and, by cascade, its leagues,
// groups, enrollments and matches.
func (s *Service) DeleteCompetition(ctx context.Context, id int64) error {
	deleted, err := s.db.Queries.DeleteCompetition(ctx, id)
	if err != nil {
		return fmt.Errorf("delete competition: %w", err)
	}
	if deleted == 0 {
		return apperr.NotFound("Competition not found")
	}
	return nil
}

func (s *Service) ListZones(ctx context.Context) ([]dbgen.Zone, error) {
	zones, err := s.db.Queries.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

// ZonesByCity lists the active zones of city labelled in locale.
func (s *Service) ZonesByCity(ctx context.Context, city models.City, locale models.Locale) ([]ZoneView, error) {
	zones, err := s.db.Queries.ListActiveZonesByCity(ctx, string(city))
	if err != nil {
		return nil, fmt.Errorf("list zones for %s: %w", city, err)
	}
	views := make([]ZoneView, 0, len(zones))
	for _, zone := range zones {
		label := zone.LabelEs
		if locale == models.LocaleEN && zone.LabelEn != "" {
			label = zone.LabelEn
		}
		views = append(views, ZoneView{ID: zone.ID, Code: zone.Code, City: zone.City, Label: label})
	}
	return views, nil
}

func (s *Service) CreateZone(ctx context.Context, input CreateZoneInput) (dbgen.Zone, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return dbgen.Zone{}, apperr.Validation("code is required")
	}
	city, err := models.ParseCity(input.City)
	if err != nil {
		return dbgen.Zone{}, apperr.Validation(err.Error())
	}
	labelES := strings.TrimSpace(input.LabelES)
	if labelES == "" {
		return dbgen.Zone{}, apperr.Validation("labelEs is required")
	}

	zone, err := s.db.Queries.CreateZone(ctx, dbgen.CreateZoneParams{
		Code:     code,
		City:     string(city),
		LabelEs:  labelES,
		LabelEn:  strings.TrimSpace(input.LabelEN),
		IsActive: input.IsActive,
	})
	if err != nil {
		if appdb.IsUniqueViolation(err) {
			return dbgen.Zone{}, apperr.Conflict("Zone already exists in this city", err)
		}
		return dbgen.Zone{}, fmt.Errorf("create zone: %w", err)
	}
	return zone, nil
}

func (s *Service) ListLeagues(ctx context.Context) ([]LeagueView, error) {
	rows, err := s.db.Queries.ListLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	views := make([]LeagueView, 0, len(rows))
	for _, row := range rows {
		view := LeagueView{
			ID:              row.ID,
			CompetitionID:   row.CompetitionID,
			CompetitionName: row.CompetitionName,
			City:            row.CompetitionCity,
			ZoneCode:        row.ZoneCode.String,
			Name:            row.Name,
			Level:           row.Level,
		}
		if row.ZoneID.Valid {
			zoneID := row.ZoneID.Int64
			view.ZoneID = &zoneID
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) CreateLeague(ctx context.Context, input CreateLeagueInput) (dbgen.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return dbgen.League{}, apperr.Validation("name is required")
	}
	if input.CompetitionID <= 0 {
		return dbgen.League{}, apperr.Validation("competitionId is required")
	}
	level := input.Level
	if level <= 0 {
		level = 1
	}
	params := dbgen.CreateLeagueParams{
		CompetitionID: input.CompetitionID,
		Name:          name,
		Level:         level,
	}
	if input.ZoneID != nil {
		params.ZoneID = sql.NullInt64{Int64: *input.ZoneID, Valid: true}
	}

	league, err := s.db.Queries.CreateLeague(ctx, params)
	if err != nil {
		switch {
		case appdb.IsUniqueViolation(err):
			return dbgen.League{}, apperr.Conflict("League already exists in this competition", err)
		case appdb.IsForeignKeyViolation(err):
			return dbgen.League{}, apperr.NotFound("Competition or zone not found")
		}
		return dbgen.League{}, fmt.Errorf("create league: %w", err)
	}
	return league, nil
}
