package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	TokenCleanupJobName = "verification_token_cleanup"
	tokenCleanupTimeout = time.Minute
)

// TokenPurger deletes expired verification tokens. *identity.Service
// satisfies it.
type TokenPurger interface {
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// RegisterTokenCleanupJob schedules the expired verification token purge.
func RegisterTokenCleanupJob(svc *Service, purger TokenPurger, cronExpr string) error {
	if purger == nil {
		return fmt.Errorf("token cleanup job requires a purger")
	}

	jobLogger := log.With().
		Str("component", "token_cleanup_job").
		Str("job_name", TokenCleanupJobName).
		Logger()

	_, err := svc.AddJob(TokenCleanupJobName, cronExpr, func() {
		runTokenCleanup(context.Background(), purger, jobLogger)
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add token cleanup job: %w", err)
	}
	return nil
}

func runTokenCleanup(ctx context.Context, purger TokenPurger, logger zerolog.Logger) int64 {
	ctx, cancel := context.WithTimeout(ctx, tokenCleanupTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx)

	removed, err := purger.PurgeExpiredTokens(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to purge expired verification tokens")
		return 0
	}
	if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("Purged expired verification tokens")
	}
	return removed
}
