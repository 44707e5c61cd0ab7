package metrics

import (
	"strings"
	"sync"
	"time"
)

// Store holds every sample collected during a monitor's lifetime and answers
// aggregate queries over them. Samples are appended from concurrently running
// probe tasks, so all access is mutex-guarded.
type Store struct {
	mu      sync.Mutex
	samples []Sample
}

// Query filters the stored samples before aggregation. The zero value
// matches everything.
type Query struct {
	Endpoint string        // substring match against the sample endpoint
	Window   time.Duration // trailing window relative to now; 0 means no limit
}

func NewStore() *Store {
	return &Store{}
}

// Append adds one sample. Samples are kept in insertion order.
func (st *Store) Append(s Sample) {
	st.mu.Lock()
	st.samples = append(st.samples, s)
	st.mu.Unlock()
}

// Len reports the number of stored samples.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.samples)
}

// Samples returns a copy of all stored samples in insertion order.
func (st *Store) Samples() []Sample {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Sample, len(st.samples))
	copy(out, st.samples)
	return out
}

// Clear discards all stored samples. Irreversible; used between test runs to
// avoid cross-contamination of aggregate statistics.
func (st *Store) Clear() {
	st.mu.Lock()
	st.samples = nil
	st.mu.Unlock()
}

// Stats filters the stored samples by the query and computes fresh aggregate
// statistics over the result. An empty match yields zero-valued stats, never
// an error.
func (st *Store) Stats(q Query) Stats {
	return Compute(st.filtered(q))
}

func (st *Store) filtered(q Query) []Sample {
	st.mu.Lock()
	defer st.mu.Unlock()

	var cutoff time.Time
	if q.Window > 0 {
		cutoff = time.Now().Add(-q.Window)
	}

	out := make([]Sample, 0, len(st.samples))
	for _, s := range st.samples {
		if q.Endpoint != "" && !strings.Contains(s.Endpoint, q.Endpoint) {
			continue
		}
		if q.Window > 0 && s.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}
