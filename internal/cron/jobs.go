package cron

import (
	"context"
	"time"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/metrics"
)

// SessionCleaner deletes expired and revoked sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StatePurger drops OAuth states that were never redeemed.
type StatePurger interface {
	Purge(now time.Time) int
}

const jobTimeout = time.Minute

// CleanupJob returns the function run on the session cleanup schedule.
func CleanupJob(sessions SessionCleaner, states StatePurger, log *logger.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		removed, err := sessions.CleanupExpired(ctx)
		if err != nil {
			log.Error("session cleanup failed", "error", err)
		} else if removed > 0 {
			metrics.CleanedSessions.Add(float64(removed))
			log.Info("purged sessions", "count", removed)
		}

		if states != nil {
			if n := states.Purge(time.Now()); n > 0 {
				log.Debug("purged oauth states", "count", n)
			}
		}
	}
}
