// Package maintenance runs periodic background jobs.
package maintenance

import (
	"context"
	"time"

	"github.com/5w1tchy/library-api/internal/logging"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Every runs job immediately and then every interval until ctx is done.
// Each run gets its own timeout of at most interval. A failed run is logged
// and the schedule continues.
func Every(ctx context.Context, name string, interval time.Duration, job Job) {
	if interval <= 0 {
		return
	}
	log := logging.Ctx(ctx).With().Str("job", name).Logger()
	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		start := time.Now()
		if err := job(runCtx); err != nil {
			log.Warn().Err(err).Msg("job failed")
			return
		}
		log.Debug().Dur("took", time.Since(start)).Msg("job done")
	}

	runOnce()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
