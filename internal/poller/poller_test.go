package poller_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/poller"
	"github.com/apipulse/apipulse/internal/probe"
)

func countingProber(endpoint string, calls *int64) probe.Prober {
	return probe.ProberFunc(func(ctx context.Context) metrics.Sample {
		atomic.AddInt64(calls, 1)
		return metrics.NewSample(time.Now(), endpoint, time.Millisecond, 200, 10)
	})
}

func TestPollerProbesEveryEndpointEachRound(t *testing.T) {
	store := metrics.NewStore()
	var a, b int64

	p := poller.New(poller.Options{
		Probers: []probe.Prober{
			countingProber("https://example.test/a", &a),
			countingProber("https://example.test/b", &b),
		},
		Interval: 20 * time.Millisecond,
		Duration: 70 * time.Millisecond,
		Store:    store,
	})

	res := p.Run(context.Background())

	if res.Rounds < 2 {
		t.Fatalf("expected at least 2 rounds, got %d", res.Rounds)
	}
	if a != b {
		t.Errorf("endpoints probed unevenly: %d vs %d", a, b)
	}
	if int64(res.Samples) != a+b {
		t.Errorf("result reports %d samples, probers produced %d", res.Samples, a+b)
	}
	if store.Len() != res.Samples {
		t.Errorf("store holds %d samples, expected %d", store.Len(), res.Samples)
	}
}

func TestPollerStopsAfterDuration(t *testing.T) {
	store := metrics.NewStore()
	var calls int64

	p := poller.New(poller.Options{
		Probers:  []probe.Prober{countingProber("https://example.test", &calls)},
		Interval: 10 * time.Millisecond,
		Duration: 50 * time.Millisecond,
		Store:    store,
	})

	start := time.Now()
	p.Run(context.Background())
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("stopped early: %s", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("ran far past the duration budget: %s", elapsed)
	}
}

func TestPollerCancellationBetweenRounds(t *testing.T) {
	store := metrics.NewStore()
	roundDone := make(chan struct{}, 100)

	slow := probe.ProberFunc(func(ctx context.Context) metrics.Sample {
		// Probe must complete even when the loop context is cancelled
		// mid-round.
		select {
		case <-time.After(30 * time.Millisecond):
		case <-ctx.Done():
			t.Error("in-flight probe was cancelled")
		}
		roundDone <- struct{}{}
		return metrics.NewSample(time.Now(), "https://example.test", time.Millisecond, 200, 1)
	})

	p := poller.New(poller.Options{
		Probers:  []probe.Prober{slow},
		Interval: 10 * time.Millisecond,
		Duration: 10 * time.Second,
		Store:    store,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel while the first round is in flight.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res := p.Run(ctx)

	if res.Rounds != 1 {
		t.Fatalf("expected exactly 1 round, got %d", res.Rounds)
	}
	if store.Len() != 1 {
		t.Errorf("expected the in-flight round's sample kept, store has %d", store.Len())
	}
}

func TestPollerFailureLogging(t *testing.T) {
	store := metrics.NewStore()
	var logged int64

	failing := probe.ProberFunc(func(ctx context.Context) metrics.Sample {
		return metrics.NewFailedSample(time.Now(), "https://example.test", time.Millisecond, "refused")
	})

	p := poller.New(poller.Options{
		Probers:  []probe.Prober{failing},
		Interval: 5 * time.Millisecond,
		Duration: 12 * time.Millisecond,
		Store:    store,
		Logger:   failureCounter{&logged},
	})

	res := p.Run(context.Background())

	if atomic.LoadInt64(&logged) != int64(res.Samples) {
		t.Errorf("expected %d logged failures, got %d", res.Samples, logged)
	}
}

type failureCounter struct{ n *int64 }

func (c failureCounter) LogFailure(metrics.Sample) { atomic.AddInt64(c.n, 1) }
