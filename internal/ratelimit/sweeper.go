package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunSweeper evicts idle buckets every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, l *KeyedLimiter, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(idle); n > 0 {
				log.Debug().Int("evicted", n).Int("remaining", l.Len()).Msg("rate limiter buckets swept")
			}
		}
	}
}
