package ratelimit

import (
	"context"
	"time"

	"doccompare/internal/logger"
)

// Purger deletes expired counters.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RunJanitor purges expired counters every interval until ctx is done.
// A non-positive interval disables purging.
func RunJanitor(ctx context.Context, p Purger, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := p.PurgeExpired(ctx, now)
			if err != nil {
				log.Log(map[string]any{"event": "rate_limit_purge", "status": "error", "error": err})
				continue
			}
			if n > 0 {
				log.Log(map[string]any{"event": "rate_limit_purge", "status": "success", "deleted": n})
			}
		}
	}
}
