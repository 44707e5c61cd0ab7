package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/threshold"
)

// PrintSample outputs a single probe result in a human-readable line.
func PrintSample(w io.Writer, sample metrics.Sample) {
	status := "OK"
	if !sample.Success {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s status=%d latency=%s size=%dB",
		status, sample.Endpoint, sample.StatusCode, sample.ResponseTime, sample.ResponseSize)
	if sample.ErrorMessage != "" {
		fmt.Fprintf(w, " error=%q", sample.ErrorMessage)
	}
	fmt.Fprintln(w)
}

// PrintStats outputs a human-readable summary of aggregate statistics.
func PrintStats(w io.Writer, stats metrics.Stats) {
	fmt.Fprintf(w, "Total Requests:    %d\n", stats.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", stats.SuccessfulRequests)
	fmt.Fprintf(w, "Failed:            %d\n", stats.FailedRequests)
	fmt.Fprintf(w, "Availability:      %.2f%%\n", stats.AvailabilityPercent)
	fmt.Fprintf(w, "Throughput:        %.2f req/s\n", stats.ThroughputPerSecond)
	fmt.Fprintf(w, "Data Transferred:  %d bytes\n", stats.TotalDataTransferred)
	fmt.Fprintln(w, "\nLatency:")
	if math.IsInf(stats.MinResponseTime, 1) {
		fmt.Fprintln(w, "  Min:             n/a")
	} else {
		fmt.Fprintf(w, "  Min:             %.1fms\n", stats.MinResponseTimeMs)
	}
	fmt.Fprintf(w, "  Max:             %.1fms\n", stats.MaxResponseTimeMs)
	fmt.Fprintf(w, "  Avg:             %.1fms\n", stats.AvgResponseTimeMs)
	fmt.Fprintf(w, "  P95:             %.1fms\n", stats.Percentile95Ms)
}

// PrintReport outputs a full detailed report with per-endpoint breakdowns
// and the most frequent errors.
func PrintReport(w io.Writer, report metrics.Report) {
	fmt.Fprintln(w, "\n--- Monitoring Report ---")
	fmt.Fprintf(w, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	PrintStats(w, report.Summary)

	if len(report.Endpoints) > 0 {
		fmt.Fprintln(w, "\nEndpoint Breakdown:")
		for _, endpoint := range report.Endpoints {
			stats := endpoint.Stats
			share := 0.0
			if report.Summary.TotalRequests > 0 {
				share = float64(stats.TotalRequests) / float64(report.Summary.TotalRequests) * 100
			}
			fmt.Fprintf(
				w,
				"  - %s: total=%d (%.1f%%), availability=%.2f%%, avg=%.1fms, p95=%.1fms\n",
				endpoint.Endpoint,
				stats.TotalRequests,
				share,
				stats.AvailabilityPercent,
				stats.AvgResponseTimeMs,
				stats.Percentile95Ms,
			)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\nTop Errors:")
		for _, bucket := range report.Errors {
			fmt.Fprintf(w, "  %4d  %s\n", bucket.Count, bucket.Message)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted value with indentation.
func PrintJSONReport(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintThresholdResults outputs threshold evaluation outcomes.
func PrintThresholdResults(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThresholds:")
	for _, result := range results {
		fmt.Fprintf(w, "  %s\n", result.Message)
	}
}
