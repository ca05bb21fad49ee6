// Package readiness polls a dependency until it answers or the attempt budget runs out.
package readiness

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

// Policy bounds polling: at most Attempts probes, Delay apart.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Result of a Wait. Err is the last probe error when not ready.
type Result struct {
	Ready    bool
	Attempts int
	Err      error
}

// Wait probes until success, the budget is spent, or ctx is done.
// It never sleeps after the last attempt.
func Wait(ctx context.Context, name string, p Policy, probe Probe, logger *zap.Logger) Result {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var res Result
	for i := 1; i <= attempts; i++ {
		res.Attempts = i
		err := probe(ctx)
		if err == nil {
			res.Ready = true
			res.Err = nil
			logger.Info("Dependency ready",
				zap.String("dependency", name),
				zap.Int("attempts", i),
			)
			return res
		}
		res.Err = err

		if i == attempts {
			break
		}
		logger.Debug("Dependency not ready, retrying",
			zap.String("dependency", name),
			zap.Int("attempt", i),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			res.Err = ctx.Err()
			return res
		case <-time.After(p.Delay):
		}
	}
	return res
}
