package dbgen

import (
	"database/sql"
	"time"
)

type Competition struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	IsActive   bool      `json:"isActive"`
	PriceCents int64     `json:"priceCents"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CompetitionPlayer struct {
	ID            int64     `json:"id"`
	CompetitionID int64     `json:"competitionId"`
	PlayerID      int64     `json:"playerId"`
	RegisteredAt  time.Time `json:"registeredAt"`
	IsActive      bool      `json:"isActive"`
}

type GroupAssignment struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"playerId"`
	GroupID    int64     `json:"groupId"`
	AssignedAt time.Time `json:"assignedAt"`
}

type League struct {
	ID            int64         `json:"id"`
	CompetitionID int64         `json:"competitionId"`
	ZoneID        sql.NullInt64 `json:"zoneId"`
	Name          string        `json:"name"`
	Level         int64         `json:"level"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Match struct {
	ID           int64         `json:"id"`
	GroupID      int64         `json:"groupId"`
	HomePlayerID int64         `json:"homePlayerId"`
	AwayPlayerID int64         `json:"awayPlayerId"`
	Status       string        `json:"status"`
	RoundNumber  int64         `json:"roundNumber"`
	DeadlineDate time.Time     `json:"deadlineDate"`
	MatchDate    sql.NullTime  `json:"matchDate"`
	HomeScore    sql.NullInt64 `json:"homeScore"`
	AwayScore    sql.NullInt64 `json:"awayScore"`
	ReportedBy   sql.NullInt64 `json:"reportedBy"`
	ReportedAt   sql.NullTime  `json:"reportedAt"`
	ConfirmedAt  sql.NullTime  `json:"confirmedAt"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type PlayerGroup struct {
	ID            int64         `json:"id"`
	CompetitionID int64         `json:"competitionId"`
	LeagueID      sql.NullInt64 `json:"leagueId"`
	Name          string        `json:"name"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type ProcessedPaymentEvent struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	ProcessedAt time.Time `json:"processedAt"`
}

type User struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	PasswordHash  sql.NullString  `json:"-"`
	Role          string          `json:"role"`
	EmailVerified sql.NullTime    `json:"emailVerified"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Phone         sql.NullString  `json:"phone"`
	City          sql.NullString  `json:"city"`
	Handicap      sql.NullFloat64 `json:"handicap"`
	Status        string          `json:"status"`
	PaidAt        sql.NullTime    `json:"paidAt"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type VerificationToken struct {
	Identifier string    `json:"identifier"`
	Token      string    `json:"token"`
	Expires    time.Time `json:"expires"`
}

type Zone struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	City      string    `json:"city"`
	LabelEs   string    `json:"labelEs"`
	LabelEn   string    `json:"labelEn"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
