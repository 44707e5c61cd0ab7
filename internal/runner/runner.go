package runner

import (
	"context"
	"sync"
	"time"

	"github.com/apipulse/apipulse/internal/metrics"
)

// Runner executes a fixed number of probes against one target with a bounded
// number in flight at any instant.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run schedules all probes at once, gated by the semaphore, and collects
// their samples in completion order. Tasks cancelled before probing are
// excluded from the result rather than aborting the run, so the returned
// slice may be shorter than Total; the store grows by exactly the returned
// length. A run that collects zero samples is valid output, not an error.
func (r *Runner) Run(ctx context.Context) []metrics.Sample {
	if ctx == nil {
		ctx = context.Background()
	}
	opt := r.opt
	if opt.Total == 0 || opt.Prober == nil {
		return nil
	}

	limiter := opt.LimiterFactory(opt.RatePerSecond)
	sem := make(chan struct{}, opt.Concurrency)
	results := make(chan metrics.Sample, opt.Total)

	var wg sync.WaitGroup
	for i := 0; i < opt.Total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sample := opt.Prober.Probe(ctx)
			if opt.Store != nil {
				opt.Store.Append(sample)
			}
			if opt.Logger != nil && !sample.Success {
				opt.Logger.LogFailure(sample)
			}
			results <- sample

			// Hold the slot through the configured delay so the pause
			// throttles slot reuse, not just this goroutine.
			if opt.Delay > 0 {
				select {
				case <-time.After(opt.Delay):
				case <-ctx.Done():
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make([]metrics.Sample, 0, opt.Total)
	for s := range results {
		out = append(out, s)
	}
	return out
}
