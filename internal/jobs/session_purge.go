package jobs

import (
	"context"
	"log/slog"
	"time"
)

type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

const purgeTimeout = 10 * time.Second

func StartSessionPurgeJob(ctx context.Context, interval time.Duration, purger SessionPurger, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if purger == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
				purged, err := purger.PurgeExpired(tickCtx, time.Now().UTC())
				cancel()
				if err != nil {
					logger.Error("session purge job error", "error", err)
					continue
				}
				if purged > 0 {
					logger.Info("session purge job removed expired records", "count", purged)
				}
			}
		}
	}()
}
