package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/tracing"
)

// Target describes one endpoint to probe.
type Target struct {
	URL     string
	Method  string // defaults to GET
	Headers map[string]string
	Body    string
	Assert  *BodyAssertion
}

// BodyAssertion rejects an otherwise successful response whose body does not
// satisfy a gjson path check. With an empty Equals the path only has to
// exist.
type BodyAssertion struct {
	Path   string
	Equals string
}

// Prober issues one probe and always yields a sample. The signature makes
// the "cannot fail" contract explicit: every attempt produces exactly one
// sample, failures included.
type Prober interface {
	Probe(ctx context.Context) metrics.Sample
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) metrics.Sample

func (f ProberFunc) Probe(ctx context.Context) metrics.Sample { return f(ctx) }

// Executor performs HTTP probes against targets using a shared pooled
// client. It never returns an error: transport and protocol failures are
// downgraded into failed samples, since downstream aggregation assumes every
// attempted request yields exactly one sample.
type Executor struct {
	Client  *http.Client     // required; owned by the monitor
	Tracing *tracing.Provider // optional; nil disables spans

	// MaxBodyBytes caps how much of the response body is read. 0 reads the
	// entire body, matching the timing contract (request start to full read).
	MaxBodyBytes int64
}

// Bind returns a Prober with the target fixed, for use by the load runner
// and the continuous poller.
func (e *Executor) Bind(target Target) Prober {
	return ProberFunc(func(ctx context.Context) metrics.Sample {
		return e.Execute(ctx, target)
	})
}

// Execute performs one request against the target and measures it. Elapsed
// time covers connection, request, and the full body read.
func (e *Executor) Execute(ctx context.Context, target Target) metrics.Sample {
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(target.Method))
	if method == "" {
		method = http.MethodGet
	}

	ts := time.Now()
	ctx, span := tracing.StartProbeSpan(ctx, e.Tracing.Tracer(), method, target.URL)

	sample := e.execute(ctx, ts, method, target)
	tracing.EndProbeSpan(span, sample.StatusCode, sample.ErrorMessage)
	return sample
}

func (e *Executor) execute(ctx context.Context, ts time.Time, method string, target Target) metrics.Sample {
	var bodyReader io.Reader
	if target.Body != "" {
		bodyReader = strings.NewReader(target.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.URL, bodyReader)
	if err != nil {
		return metrics.NewFailedSample(ts, target.URL, time.Since(ts), err.Error())
	}
	for key, value := range target.Headers {
		req.Header.Set(key, value)
	}
	if e.Tracing.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return metrics.NewFailedSample(ts, target.URL, time.Since(ts), err.Error())
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if e.MaxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, e.MaxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	latency := time.Since(ts)
	if err != nil {
		return metrics.NewFailedSample(ts, target.URL, latency, err.Error())
	}

	sample := metrics.NewSample(ts, target.URL, latency, resp.StatusCode, int64(len(body)))
	if sample.Success && target.Assert != nil {
		if msg := target.Assert.check(body); msg != "" {
			sample = sample.WithFailure(msg)
		}
	}
	return sample
}

func (a *BodyAssertion) check(body []byte) string {
	result := gjson.GetBytes(body, a.Path)
	if !result.Exists() {
		return fmt.Sprintf("body assertion failed: path %q not found", a.Path)
	}
	if a.Equals != "" && result.String() != a.Equals {
		return fmt.Sprintf("body assertion failed: %s = %q, want %q", a.Path, result.String(), a.Equals)
	}
	return ""
}
