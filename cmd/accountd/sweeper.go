package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// sweepFunc removes expired records and reports how many went away.
type sweepFunc func(ctx context.Context) (int64, error)

// runSweeper returns a function suitable for errgroup. It sweeps once at
// start and then every interval until ctx is done. Sweep failures are logged
// and retried on the next tick.
func runSweeper(ctx context.Context, sweep sweepFunc, interval time.Duration, log *slog.Logger) func() error {
	return func() error {
		if interval <= 0 {
			log.InfoContext(ctx, "expired token sweeper disabled")
			return nil
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			start := time.Now()
			n, err := sweep(ctx)
			switch {
			case err != nil && ctx.Err() == nil:
				log.ErrorContext(ctx, "failed to sweep expired tokens", logger.Error(err))
			case n > 0:
				log.InfoContext(ctx, "expired tokens swept", logger.Count(n), logger.Duration(time.Since(start)))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}

// probe is a dependency health check.
type probe struct {
	name  string
	check func(context.Context) error
}

// runHealthMonitor returns a function suitable for errgroup that runs every
// probe each interval and logs state changes.
func runHealthMonitor(ctx context.Context, probes []probe, interval time.Duration, log *slog.Logger) func() error {
	return func() error {
		if interval <= 0 || len(probes) == 0 {
			return nil
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		healthy := make(map[string]bool, len(probes))
		for _, p := range probes {
			healthy[p.name] = true
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			for _, p := range probes {
				checkCtx, cancel := context.WithTimeout(ctx, interval)
				err := p.check(checkCtx)
				cancel()

				switch {
				case err != nil && healthy[p.name]:
					healthy[p.name] = false
					log.ErrorContext(ctx, "dependency unhealthy", logger.Component(p.name), logger.Error(err))
				case err == nil && !healthy[p.name]:
					healthy[p.name] = true
					log.InfoContext(ctx, "dependency recovered", logger.Component(p.name))
				}
			}
		}
	}
}
