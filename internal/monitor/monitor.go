package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/apipulse/apipulse/internal/config"
	"github.com/apipulse/apipulse/internal/httpclient"
	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/poller"
	"github.com/apipulse/apipulse/internal/probe"
	"github.com/apipulse/apipulse/internal/runner"
	"github.com/apipulse/apipulse/internal/tracing"
)

const defaultTimeout = 30 * time.Second

// Options configure a Monitor.
type Options struct {
	Timeout      time.Duration     // per-request timeout; defaults to 30s
	MaxBodyBytes int64             // cap on response body bytes read; 0 means unlimited
	Tracing      *tracing.Provider // optional
	Logger       runner.FailureLogger
}

// Monitor owns a metric store and an HTTP client and exposes probing, load
// testing, and continuous monitoring over them. Each Monitor is independent;
// two instances never share state.
type Monitor struct {
	opt       Options
	store     *metrics.Store
	sessionID string

	clientOnce sync.Once
	client     *http.Client

	mu     sync.Mutex
	runs   []RunInfo
	closed bool
}

// RunInfo records one completed operation within a session.
type RunInfo struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "probe", "load", or "monitor"
	StartedAt time.Time `json:"started_at"`
	Samples   int       `json:"samples"`
}

// Report is the monitor's detailed report: session metadata plus the full
// metric breakdown.
type Report struct {
	SessionID string    `json:"session_id"`
	Runs      []RunInfo `json:"runs,omitempty"`
	metrics.Report
}

// LoadTestOptions configure a single load test run.
type LoadTestOptions struct {
	URL           string
	Method        string
	Headers       map[string]string
	Body          string
	Concurrency   int           // defaults to 10
	Total         int           // 0 issues no requests
	Delay         time.Duration // held in the concurrency slot after each request
	RatePerSecond int           // optional pacing; 0 disables
	Assert        *probe.BodyAssertion
}

// New creates a Monitor with its own metric store and session identity.
func New(opt Options) *Monitor {
	if opt.Timeout <= 0 {
		opt.Timeout = defaultTimeout
	}
	return &Monitor{
		opt:       opt,
		store:     metrics.NewStore(),
		sessionID: ulid.Make().String(),
	}
}

// SessionID returns the unique identifier of this monitor instance.
func (m *Monitor) SessionID() string {
	return m.sessionID
}

// Store exposes the underlying metric store.
func (m *Monitor) Store() *metrics.Store {
	return m.store
}

func (m *Monitor) httpClient() *http.Client {
	m.clientOnce.Do(func() {
		m.client = httpclient.New(m.opt.Timeout)
	})
	return m.client
}

func (m *Monitor) executor() *probe.Executor {
	return &probe.Executor{
		Client:       m.httpClient(),
		Tracing:      m.opt.Tracing,
		MaxBodyBytes: m.opt.MaxBodyBytes,
	}
}

func (m *Monitor) recordRun(kind string, startedAt time.Time, samples int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, RunInfo{
		ID:        ulid.Make().String(),
		Kind:      kind,
		StartedAt: startedAt,
		Samples:   samples,
	})
}

// TestSingleEndpoint issues one request against the URL and records the
// sample. Transport failures are reported inside the sample, not as an
// error; the error return covers invalid input only.
func (m *Monitor) TestSingleEndpoint(ctx context.Context, url, method string) (metrics.Sample, error) {
	if err := config.ValidateURL(url); err != nil {
		return metrics.Sample{}, err
	}

	started := time.Now()
	sample := m.executor().Execute(ctx, probe.Target{URL: url, Method: method})
	m.store.Append(sample)
	if !sample.Success && m.opt.Logger != nil {
		m.opt.Logger.LogFailure(sample)
	}
	m.recordRun("probe", started, 1)
	return sample, nil
}

// LoadTest issues opt.Total requests against opt.URL with bounded
// concurrency and returns the collected samples in completion order.
func (m *Monitor) LoadTest(ctx context.Context, opt LoadTestOptions) ([]metrics.Sample, error) {
	if err := config.ValidateURL(opt.URL); err != nil {
		return nil, err
	}
	if opt.Total < 0 {
		return nil, fmt.Errorf("total must not be negative, got %d", opt.Total)
	}
	if opt.Concurrency <= 0 {
		opt.Concurrency = 10
	}

	target := probe.Target{
		URL:     opt.URL,
		Method:  opt.Method,
		Headers: opt.Headers,
		Body:    opt.Body,
		Assert:  opt.Assert,
	}

	started := time.Now()
	samples := runner.New(runner.Options{
		Concurrency:   opt.Concurrency,
		Total:         opt.Total,
		Delay:         opt.Delay,
		RatePerSecond: opt.RatePerSecond,
		Prober:        m.executor().Bind(target),
		Store:         m.store,
		Logger:        m.opt.Logger,
	}).Run(ctx)
	m.recordRun("load", started, len(samples))
	return samples, nil
}

// MonitorContinuously polls every URL once per round, with interval pauses
// between rounds, until the duration budget is spent or the context is
// cancelled. A round in flight at cancellation completes and keeps its
// samples.
func (m *Monitor) MonitorContinuously(ctx context.Context, urls []string, interval, duration time.Duration) (poller.Result, error) {
	if len(urls) == 0 {
		return poller.Result{}, fmt.Errorf("at least one URL is required")
	}
	for _, url := range urls {
		if err := config.ValidateURL(url); err != nil {
			return poller.Result{}, err
		}
	}
	if interval <= 0 {
		return poller.Result{}, fmt.Errorf("interval must be positive, got %s", interval)
	}
	if duration <= 0 {
		return poller.Result{}, fmt.Errorf("duration must be positive, got %s", duration)
	}

	executor := m.executor()
	probers := make([]probe.Prober, 0, len(urls))
	for _, url := range urls {
		probers = append(probers, executor.Bind(probe.Target{URL: url}))
	}

	started := time.Now()
	result := poller.New(poller.Options{
		Probers:  probers,
		Interval: interval,
		Duration: duration,
		Store:    m.store,
		Logger:   m.opt.Logger,
	}).Run(ctx)
	m.recordRun("monitor", started, result.Samples)
	return result, nil
}

// Stats computes aggregate statistics over the recorded samples matching
// the query.
func (m *Monitor) Stats(q metrics.Query) metrics.Stats {
	return m.store.Stats(q)
}

// DetailedReport builds a full report over everything recorded so far.
func (m *Monitor) DetailedReport() Report {
	m.mu.Lock()
	runs := make([]RunInfo, len(m.runs))
	copy(runs, m.runs)
	m.mu.Unlock()

	return Report{
		SessionID: m.sessionID,
		Runs:      runs,
		Report:    m.store.Report(),
	}
}

// ClearMetrics discards all recorded samples. Run history is kept.
func (m *Monitor) ClearMetrics() {
	m.store.Clear()
}

// Close releases idle connections. Safe to call more than once.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.client != nil {
		m.client.CloseIdleConnections()
	}
}
