package runner

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/probe"
)

// FailureLogger logs failed probe samples.
type FailureLogger interface {
	LogFailure(sample metrics.Sample)
}

// Options configure the Runner.
type Options struct {
	Concurrency   int           // counting semaphore size: max probes in flight
	Total         int           // number of probes to issue
	Delay         time.Duration // pause after each probe before its slot is released
	RatePerSecond int           // optional pacing; 0 means the semaphore is the only throttle
	Prober        probe.Prober  // probe executor bound to a target (required)
	Store         *metrics.Store // optional sink; every collected sample is appended
	Logger        FailureLogger  // optional; called for each failed sample

	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Total < 0 {
		o.Total = 0
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
