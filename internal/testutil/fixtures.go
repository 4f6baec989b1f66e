package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/codr1/golfleague/internal/db"
)

// UserFixture describes a user row inserted by InsertUser. Zero values pick
// sensible defaults: role USER, status ACTIVE, verified now.
type UserFixture struct {
	Email      string
	Password   string
	Role       string
	Status     string
	FirstName  string
	LastName   string
	City       string
	Unverified bool
}

func InsertUser(t *testing.T, database *db.DB, fixture UserFixture) int64 {
	t.Helper()

	role := fixture.Role
	if role == "" {
		role = "USER"
	}
	status := fixture.Status
	if status == "" {
		status = "ACTIVE"
	}
	firstName := fixture.FirstName
	if firstName == "" {
		firstName = "Test"
	}
	lastName := fixture.LastName
	if lastName == "" {
		lastName = "Player"
	}

	var passwordHash sql.NullString
	if fixture.Password != "" {
		// MinCost keeps the test suite fast; production hashing uses DefaultCost.
		hash, err := bcrypt.GenerateFromPassword([]byte(fixture.Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		passwordHash = sql.NullString{String: string(hash), Valid: true}
	}

	var verified sql.NullTime
	if !fixture.Unverified {
		verified = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	var city sql.NullString
	if fixture.City != "" {
		city = sql.NullString{String: fixture.City, Valid: true}
	}

	result, err := database.ExecContext(context.Background(),
		`INSERT INTO users (email, password_hash, role, email_verified, first_name, last_name, city, status)
		 VALUES (LOWER(?), ?, ?, ?, ?, ?, ?, ?)`,
		fixture.Email, passwordHash, role, verified, firstName, lastName, city, status,
	)
	if err != nil {
		t.Fatalf("insert user %s: %v", fixture.Email, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	return id
}

// CompetitionFixture describes a competition row inserted by InsertCompetition.
type CompetitionFixture struct {
	Name      string
	City      string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

func InsertCompetition(t *testing.T, database *db.DB, fixture CompetitionFixture) int64 {
	t.Helper()

	result, err := database.ExecContext(context.Background(),
		`INSERT INTO competitions (name, city, type, status, start_date, end_date, is_active, price_cents)
		 VALUES (?, ?, 'LEAGUE', 'OPEN', ?, ?, ?, 0)`,
		fixture.Name, fixture.City, fixture.StartDate.UTC(), fixture.EndDate.UTC(), fixture.IsActive,
	)
	if err != nil {
		t.Fatalf("insert competition %s: %v", fixture.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("competition id: %v", err)
	}
	return id
}

// InsertGroupWithPlayers creates a group in competitionID, enrolls every
// player in the competition and assigns them to the group.
func InsertGroupWithPlayers(t *testing.T, database *db.DB, competitionID int64, name string, playerIDs ...int64) int64 {
	t.Helper()

	ctx := context.Background()
	result, err := database.ExecContext(ctx,
		`INSERT INTO player_groups (competition_id, name) VALUES (?, ?)`,
		competitionID, name,
	)
	if err != nil {
		t.Fatalf("insert group %s: %v", name, err)
	}
	groupID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("group id: %v", err)
	}

	for _, playerID := range playerIDs {
		if _, err := database.ExecContext(ctx,
			`INSERT OR IGNORE INTO competition_players (competition_id, player_id) VALUES (?, ?)`,
			competitionID, playerID,
		); err != nil {
			t.Fatalf("enroll player %d: %v", playerID, err)
		}
		if _, err := database.ExecContext(ctx,
			`INSERT INTO group_assignments (player_id, group_id) VALUES (?, ?)`,
			playerID, groupID,
		); err != nil {
			t.Fatalf("assign player %d: %v", playerID, err)
		}
	}
	return groupID
}

// MatchFixture describes a match row inserted by InsertMatch.
type MatchFixture struct {
	GroupID   int64
	HomeID    int64
	AwayID    int64
	Status    string
	Round     int64
	Deadline  time.Time
	MatchDate *time.Time
	HomeScore *int64
	AwayScore *int64
}

func InsertMatch(t *testing.T, database *db.DB, fixture MatchFixture) int64 {
	t.Helper()

	status := fixture.Status
	if status == "" {
		status = "PENDING"
	}
	round := fixture.Round
	if round == 0 {
		round = 1
	}
	var matchDate sql.NullTime
	if fixture.MatchDate != nil {
		matchDate = sql.NullTime{Time: fixture.MatchDate.UTC(), Valid: true}
	}
	var homeScore, awayScore sql.NullInt64
	if fixture.HomeScore != nil {
		homeScore = sql.NullInt64{Int64: *fixture.HomeScore, Valid: true}
	}
	if fixture.AwayScore != nil {
		awayScore = sql.NullInt64{Int64: *fixture.AwayScore, Valid: true}
	}

	result, err := database.ExecContext(context.Background(),
		`INSERT INTO matches (group_id, home_player_id, away_player_id, status, round_number, deadline_date, match_date, home_score, away_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fixture.GroupID, fixture.HomeID, fixture.AwayID, status, round, fixture.Deadline.UTC(), matchDate, homeScore, awayScore,
	)
	if err != nil {
		t.Fatalf("insert match: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("match id: %v", err)
	}
	return id
}

func Int64Ptr(v int64) *int64 {
	return &v
}

func TimePtr(v time.Time) *time.Time {
	return &v
}
