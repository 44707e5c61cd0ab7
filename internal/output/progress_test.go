package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apipulse/apipulse/internal/metrics"
)

// syncBuffer guards a bytes.Buffer for use from the reporter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressReporterWritesUpdates(t *testing.T) {
	store := metrics.NewStore()
	now := time.Now()
	for i := 0; i < 5; i++ {
		store.Append(metrics.NewSample(now, "https://api.test", 30*time.Millisecond, 200, 10))
	}

	var buf syncBuffer
	reporter := NewProgressReporter(store, 10*time.Millisecond, &buf)
	reporter.Start()
	time.Sleep(50 * time.Millisecond)
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "Requests: 5") {
		t.Errorf("output = %q, want request count", out)
	}
	if !strings.Contains(out, "\r") {
		t.Errorf("output = %q, want carriage-return updates", out)
	}
}

func TestProgressReporterStartIdempotent(t *testing.T) {
	store := metrics.NewStore()
	var buf syncBuffer
	reporter := NewProgressReporter(store, 10*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start() // second start is a no-op
	reporter.Stop()
}

func TestProgressReporterStopBeforeStart(t *testing.T) {
	reporter := NewProgressReporter(metrics.NewStore(), 10*time.Millisecond, nil)
	reporter.Stop() // must not panic or block
}

func TestProgressReporterNilWriter(t *testing.T) {
	reporter := NewProgressReporter(metrics.NewStore(), 10*time.Millisecond, nil)
	reporter.Start()
	time.Sleep(25 * time.Millisecond)
	reporter.Stop()
}
