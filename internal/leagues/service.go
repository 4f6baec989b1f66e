// Package leagues holds the competition directory, group assignment, match
// records and standings.
package leagues

import (
	"context"

	appdb "github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/email"
)

// MatchNotifier is told when a result is reported so the opponent can be
// asked to confirm it. *email.Dispatcher satisfies it.
type MatchNotifier interface {
	NotifyMatchReported(ctx context.Context, to string, details email.MatchReportedDetails)
}

type Service struct {
	db       *appdb.DB
	notifier MatchNotifier
}

func NewService(database *appdb.DB, notifier MatchNotifier) *Service {
	return &Service{db: database, notifier: notifier}
}
