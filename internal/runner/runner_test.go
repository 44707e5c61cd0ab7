package runner_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/probe"
	"github.com/apipulse/apipulse/internal/runner"
)

// fakeProber simulates a probe with fixed latency and tracks how many run
// concurrently.
type fakeProber struct {
	latency     time.Duration
	calls       int64
	inFlight    int64
	maxInFlight int64
	fail        bool
}

func (f *fakeProber) Probe(ctx context.Context) metrics.Sample {
	atomic.AddInt64(&f.calls, 1)
	current := atomic.AddInt64(&f.inFlight, 1)
	for {
		prev := atomic.LoadInt64(&f.maxInFlight)
		if current <= prev || atomic.CompareAndSwapInt64(&f.maxInFlight, prev, current) {
			break
		}
	}
	defer atomic.AddInt64(&f.inFlight, -1)

	if f.latency > 0 {
		select {
		case <-time.After(f.latency):
		case <-ctx.Done():
		}
	}
	if f.fail {
		return metrics.NewFailedSample(time.Now(), "https://example.test", f.latency, "connection refused")
	}
	return metrics.NewSample(time.Now(), "https://example.test", f.latency, 200, 100)
}

func TestRunnerIssuesTotal(t *testing.T) {
	store := metrics.NewStore()
	p := &fakeProber{latency: time.Millisecond}
	r := runner.New(runner.Options{
		Concurrency: 5,
		Total:       20,
		Prober:      p,
		Store:       store,
	})

	samples := r.Run(context.Background())

	if len(samples) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(samples))
	}
	if atomic.LoadInt64(&p.calls) != 20 {
		t.Errorf("expected prober called 20 times, got %d", p.calls)
	}
	if store.Len() != len(samples) {
		t.Errorf("store grew by %d, expected %d", store.Len(), len(samples))
	}
}

func TestRunnerConcurrencyBound(t *testing.T) {
	p := &fakeProber{latency: 5 * time.Millisecond}
	r := runner.New(runner.Options{
		Concurrency: 4,
		Total:       40,
		Prober:      p,
	})

	r.Run(context.Background())

	if peak := atomic.LoadInt64(&p.maxInFlight); peak > 4 {
		t.Errorf("concurrency bound violated: %d probes in flight", peak)
	}
}

func TestRunnerZeroTotal(t *testing.T) {
	p := &fakeProber{}
	r := runner.New(runner.Options{Concurrency: 5, Total: 0, Prober: p})

	samples := r.Run(context.Background())

	if len(samples) != 0 {
		t.Fatalf("expected empty result, got %d", len(samples))
	}
	if atomic.LoadInt64(&p.calls) != 0 {
		t.Errorf("prober should not run, got %d calls", p.calls)
	}
}

func TestRunnerConcurrencyExceedsTotal(t *testing.T) {
	p := &fakeProber{latency: time.Millisecond}
	r := runner.New(runner.Options{Concurrency: 50, Total: 5, Prober: p})

	samples := r.Run(context.Background())
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
}

func TestRunnerDelayHoldsSlot(t *testing.T) {
	p := &fakeProber{}
	r := runner.New(runner.Options{
		Concurrency: 1,
		Total:       2,
		Delay:       50 * time.Millisecond,
		Prober:      p,
	})

	start := time.Now()
	samples := r.Run(context.Background())
	elapsed := time.Since(start)

	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	// Each slot holds its delay, so two sequential slots take at least ~100ms.
	if elapsed < 90*time.Millisecond {
		t.Errorf("delay not enforced: run finished in %s", elapsed)
	}
}

func TestRunnerCancellationExcludesTasks(t *testing.T) {
	store := metrics.NewStore()
	p := &fakeProber{latency: 10 * time.Millisecond}
	r := runner.New(runner.Options{
		Concurrency: 2,
		Total:       100,
		Prober:      p,
		Store:       store,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	samples := r.Run(ctx)

	if len(samples) >= 100 {
		t.Fatalf("expected a truncated run, got %d samples", len(samples))
	}
	if store.Len() != len(samples) {
		t.Errorf("store grew by %d, expected exactly %d", store.Len(), len(samples))
	}
}

func TestRunnerRatePacing(t *testing.T) {
	p := &fakeProber{}
	r := runner.New(runner.Options{
		Concurrency:   10,
		Total:         20,
		RatePerSecond: 100,
		Prober:        p,
		LimiterFactory: func(rps int) *rate.Limiter {
			return rate.NewLimiter(rate.Limit(rps), 1)
		},
	})

	start := time.Now()
	samples := r.Run(context.Background())
	elapsed := time.Since(start)

	if len(samples) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(samples))
	}
	// 20 probes at 100 rps with burst 1 need at least ~190ms.
	if elapsed < 150*time.Millisecond {
		t.Errorf("rate pacing not applied: run finished in %s", elapsed)
	}
}

func TestRunnerLogsFailures(t *testing.T) {
	var logged int64
	p := &fakeProber{fail: true}
	r := runner.New(runner.Options{
		Concurrency: 2,
		Total:       6,
		Prober:      p,
		Logger:      failureCounter{&logged},
	})

	r.Run(context.Background())

	if atomic.LoadInt64(&logged) != 6 {
		t.Errorf("expected 6 logged failures, got %d", logged)
	}
}

type failureCounter struct{ n *int64 }

func (c failureCounter) LogFailure(metrics.Sample) { atomic.AddInt64(c.n, 1) }

var _ probe.Prober = (*fakeProber)(nil)
