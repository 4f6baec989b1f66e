package leagues

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/codr1/golfleague/internal/apperr"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/email"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/testutil"
)

type recordingNotifier struct {
	mu      sync.Mutex
	to      []string
	details []email.MatchReportedDetails
}

func (n *recordingNotifier) NotifyMatchReported(ctx context.Context, to string, details email.MatchReportedDetails) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.to = append(n.to, to)
	n.details = append(n.details, details)
}

func TestEffectiveStatusAndCanReport(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	played := sql.NullTime{Time: now.Add(-time.Hour), Valid: true}
	future := sql.NullTime{Time: now.Add(time.Hour), Valid: true}

	tests := []struct {
		name      string
		match     dbgen.Match
		status    models.MatchStatus
		canReport bool
	}{
		{"pending played", dbgen.Match{Status: "PENDING", DeadlineDate: now.Add(24 * time.Hour), MatchDate: played}, models.MatchStatusPending, true},
		{"pending unscheduled", dbgen.Match{Status: "PENDING", DeadlineDate: now.Add(24 * time.Hour)}, models.MatchStatusPending, false},
		{"pending future date", dbgen.Match{Status: "PENDING", DeadlineDate: now.Add(24 * time.Hour), MatchDate: future}, models.MatchStatusPending, false},
		{"past deadline", dbgen.Match{Status: "PENDING", DeadlineDate: now.Add(-time.Minute), MatchDate: played}, models.MatchStatusExpired, false},
		{"reported", dbgen.Match{Status: "REPORTED", DeadlineDate: now.Add(-time.Minute), MatchDate: played}, models.MatchStatusReported, false},
		{"deadline is now", dbgen.Match{Status: "PENDING", DeadlineDate: now, MatchDate: played}, models.MatchStatusPending, true},
		{"played just now", dbgen.Match{Status: "PENDING", DeadlineDate: now.Add(time.Hour), MatchDate: sql.NullTime{Time: now, Valid: true}}, models.MatchStatusPending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveStatus(tt.match, now); got != tt.status {
				t.Fatalf("expected status %s, got %s", tt.status, got)
			}
			if got := CanReportResult(tt.match, now); got != tt.canReport {
				t.Fatalf("expected canReport %v, got %v", tt.canReport, got)
			}
		})
	}
}

type matchFixture struct {
	svc      *Service
	notifier *recordingNotifier
	groupID  int64
	ana      int64
	ben      int64
	carla    int64
}

func newMatchFixture(t *testing.T) matchFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	notifier := &recordingNotifier{}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	competitionID := testutil.InsertCompetition(t, database, testutil.CompetitionFixture{
		Name: "Matches", City: "MADRID", StartDate: start, EndDate: start.AddDate(1, 0, 0), IsActive: true,
	})
	ana := testutil.InsertUser(t, database, testutil.UserFixture{Email: "ana@example.com", FirstName: "Ana", LastName: "Ruiz"})
	ben := testutil.InsertUser(t, database, testutil.UserFixture{Email: "ben@example.com", FirstName: "Ben", LastName: "Soto"})
	carla := testutil.InsertUser(t, database, testutil.UserFixture{Email: "carla@example.com", FirstName: "Carla", LastName: "Vidal"})
	groupID := testutil.InsertGroupWithPlayers(t, database, competitionID, "Grupo A", ana, ben, carla)
	return matchFixture{
		svc:      NewService(database, notifier),
		notifier: notifier,
		groupID:  groupID,
		ana:      ana,
		ben:      ben,
		carla:    carla,
	}
}

func TestCreateMatchValidation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	outsider := testutil.InsertUser(t, f.svc.db, testutil.UserFixture{Email: "out@example.com"})

	if _, err := f.svc.CreateMatch(ctx, CreateMatchInput{GroupID: f.groupID, HomePlayerID: f.ana, AwayPlayerID: f.ana, DeadlineDate: deadline}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for same player, got %v", err)
	}
	if _, err := f.svc.CreateMatch(ctx, CreateMatchInput{GroupID: f.groupID, HomePlayerID: f.ana, AwayPlayerID: f.ben}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for missing deadline, got %v", err)
	}
	if _, err := f.svc.CreateMatch(ctx, CreateMatchInput{GroupID: f.groupID, HomePlayerID: f.ana, AwayPlayerID: outsider, DeadlineDate: deadline}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unassigned player, got %v", err)
	}

	match, err := f.svc.CreateMatch(ctx, CreateMatchInput{GroupID: f.groupID, HomePlayerID: f.ana, AwayPlayerID: f.ben, DeadlineDate: deadline})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	if match.Status != "PENDING" || match.RoundNumber != 1 {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestListUpcomingForUser(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	later := testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{GroupID: f.groupID, HomeID: f.ana, AwayID: f.ben, Deadline: now.AddDate(0, 0, 14)})
	sooner := testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{
		GroupID: f.groupID, HomeID: f.carla, AwayID: f.ana, Deadline: now.AddDate(0, 0, 3),
		MatchDate: testutil.TimePtr(now.Add(-2 * time.Hour)),
	})
	testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{GroupID: f.groupID, HomeID: f.ana, AwayID: f.carla, Deadline: now.AddDate(0, 0, -1)})
	testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{GroupID: f.groupID, HomeID: f.ana, AwayID: f.ben, Status: "REPORTED", Round: 2, Deadline: now.AddDate(0, 0, 5),
		HomeScore: testutil.Int64Ptr(3), AwayScore: testutil.Int64Ptr(1)})
	testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{GroupID: f.groupID, HomeID: f.ben, AwayID: f.carla, Deadline: now.AddDate(0, 0, 5)})

	views, err := f.svc.ListUpcomingForUser(ctx, f.ana, now)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 upcoming matches, got %d: %+v", len(views), views)
	}
	if views[0].ID != sooner || views[1].ID != later {
		t.Fatalf("expected order [%d %d], got [%d %d]", sooner, later, views[0].ID, views[1].ID)
	}
	if views[0].IsHome || views[0].Opponent.ID != f.carla || views[0].Opponent.FirstName != "Carla" {
		t.Fatalf("unexpected opponent for away match: %+v", views[0])
	}
	if !views[0].CanReportResult {
		t.Fatal("played match within deadline should be reportable")
	}
	if !views[1].IsHome || views[1].Opponent.ID != f.ben || views[1].CanReportResult {
		t.Fatalf("unexpected home match view: %+v", views[1])
	}
}

func TestListUpcomingIncludesDeadlineToday(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	dueNow := testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{
		GroupID: f.groupID, HomeID: f.ana, AwayID: f.ben, Deadline: now,
		MatchDate: testutil.TimePtr(now.Add(-time.Hour)),
	})
	testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{
		GroupID: f.groupID, HomeID: f.ana, AwayID: f.carla, Deadline: now.Add(-time.Second),
	})

	views, err := f.svc.ListUpcomingForUser(ctx, f.ana, now)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(views) != 1 || views[0].ID != dueNow {
		t.Fatalf("expected only match %d, got %+v", dueNow, views)
	}
	if views[0].Status != models.MatchStatusPending || !views[0].CanReportResult {
		t.Fatalf("match due now should stay pending and reportable: %+v", views[0])
	}

	reported, err := f.svc.ReportResult(ctx, ReportResultInput{MatchID: dueNow, UserID: f.ben, HomeScore: 2, AwayScore: 2}, now)
	if err != nil {
		t.Fatalf("report at deadline: %v", err)
	}
	if reported.Status != "REPORTED" {
		t.Fatalf("unexpected status %s", reported.Status)
	}
}

func TestReportAndConfirmResult(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	matchID := testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{
		GroupID: f.groupID, HomeID: f.ana, AwayID: f.ben, Deadline: now.AddDate(0, 0, 7),
		MatchDate: testutil.TimePtr(now.Add(-time.Hour)),
	})

	if _, err := f.svc.ReportResult(ctx, ReportResultInput{MatchID: matchID, UserID: f.carla, HomeScore: 3, AwayScore: 2}, now); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non participant, got %v", err)
	}

	reported, err := f.svc.ReportResult(ctx, ReportResultInput{MatchID: matchID, UserID: f.ana, HomeScore: 3, AwayScore: 2}, now)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if reported.Status != "REPORTED" || reported.ReportedBy.Int64 != f.ana {
		t.Fatalf("unexpected reported match %+v", reported)
	}
	if len(f.notifier.to) != 1 || f.notifier.to[0] != "ben@example.com" {
		t.Fatalf("expected opponent notification, got %v", f.notifier.to)
	}
	if f.notifier.details[0].Result != "3 - 2" || f.notifier.details[0].ReporterName != "Ana Ruiz" {
		t.Fatalf("unexpected notification details %+v", f.notifier.details[0])
	}

	if _, err := f.svc.ReportResult(ctx, ReportResultInput{MatchID: matchID, UserID: f.ben, HomeScore: 1, AwayScore: 4}, now); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected second report to conflict, got %v", err)
	}

	if _, err := f.svc.ConfirmResult(ctx, matchID, f.ana, false, now); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected reporter confirmation to be forbidden, got %v", err)
	}
	if _, err := f.svc.ConfirmResult(ctx, matchID, f.carla, false, now); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected outsider confirmation to be forbidden, got %v", err)
	}

	confirmed, err := f.svc.ConfirmResult(ctx, matchID, f.ben, false, now)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != "CONFIRMED" || !confirmed.ConfirmedAt.Valid {
		t.Fatalf("unexpected confirmed match %+v", confirmed)
	}

	if _, err := f.svc.ConfirmResult(ctx, matchID, f.ben, false, now); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on repeated confirmation, got %v", err)
	}
	if _, err := f.svc.ReportResult(ctx, ReportResultInput{MatchID: matchID, UserID: f.ben, HomeScore: 0, AwayScore: 0}, now); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict when reporting a confirmed match, got %v", err)
	}
	if _, err := f.svc.ConfirmResult(ctx, 9999, f.ben, false, now); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminCanConfirmResult(t *testing.T) {
	f := newMatchFixture(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	matchID := testutil.InsertMatch(t, f.svc.db, testutil.MatchFixture{
		GroupID: f.groupID, HomeID: f.ana, AwayID: f.ben, Status: "REPORTED", Deadline: now.AddDate(0, 0, 7),
		HomeScore: testutil.Int64Ptr(2), AwayScore: testutil.Int64Ptr(2),
	})

	confirmed, err := f.svc.ConfirmResult(context.Background(), matchID, f.carla, true, now)
	if err != nil {
		t.Fatalf("admin confirm: %v", err)
	}
	if confirmed.Status != "CONFIRMED" {
		t.Fatalf("expected CONFIRMED, got %s", confirmed.Status)
	}
}
