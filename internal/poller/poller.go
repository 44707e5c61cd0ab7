// Package poller repeatedly probes a fixed set of endpoints on a wall-clock
// cadence for a bounded duration.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/probe"
	"github.com/apipulse/apipulse/internal/runner"
)

// Options configure the Poller.
type Options struct {
	Probers  []probe.Prober // one bound prober per endpoint (required, non-empty)
	Interval time.Duration  // sleep between rounds
	Duration time.Duration  // total polling budget
	Store    *metrics.Store // sink for every collected sample (required)
	Logger   runner.FailureLogger // optional
}

// Result summarizes a polling session.
type Result struct {
	Rounds  int
	Samples int
	Elapsed time.Duration
}

// Poller fires one probe per endpoint each round, all endpoints concurrent
// within the round.
type Poller struct {
	opt Options
}

func New(opt Options) *Poller {
	return &Poller{opt: opt}
}

// Run polls until the duration budget is spent or the context is cancelled.
// Cancellation is cooperative: it is observed between rounds only, so a
// round already in flight completes and its samples are kept. Because each
// round waits for all probes before sleeping, actual round spacing is
// interval plus the slowest probe of the round.
func (p *Poller) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var res Result

	for time.Since(start) < p.opt.Duration {
		if ctx.Err() != nil {
			break
		}

		res.Samples += p.round(ctx)
		res.Rounds++

		if time.Since(start) >= p.opt.Duration {
			break
		}
		select {
		case <-time.After(p.opt.Interval):
		case <-ctx.Done():
		}
	}

	res.Elapsed = time.Since(start)
	return res
}

// round probes every endpoint concurrently and waits for all of them.
// Probes run detached from the loop context so cancellation mid-round does
// not cut them short.
func (p *Poller) round(ctx context.Context) int {
	probeCtx := context.WithoutCancel(ctx)

	samples := make([]metrics.Sample, len(p.opt.Probers))
	var wg sync.WaitGroup
	for i, prober := range p.opt.Probers {
		wg.Add(1)
		go func(i int, prober probe.Prober) {
			defer wg.Done()
			samples[i] = prober.Probe(probeCtx)
		}(i, prober)
	}
	wg.Wait()

	for _, s := range samples {
		p.opt.Store.Append(s)
		if p.opt.Logger != nil && !s.Success {
			p.opt.Logger.LogFailure(s)
		}
	}
	return len(samples)
}
