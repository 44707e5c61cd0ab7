package metrics

import (
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats represents aggregated metrics derived from a set of samples. Latency
// figures are computed over successful samples only; a set with zero
// successes keeps the defaults (avg 0, min +Inf, max 0, p95 0) rather than
// producing an error.
type Stats struct {
	TotalRequests      int64 `json:"total_requests"`
	SuccessfulRequests int64 `json:"successful_requests"`
	FailedRequests     int64 `json:"failed_requests"`

	// Latency stats in seconds. MinResponseTime is +Inf until at least one
	// successful sample exists, so these carry no JSON tags; use the
	// millisecond fields below for serialized output.
	AvgResponseTime float64 `json:"-"`
	MinResponseTime float64 `json:"-"`
	MaxResponseTime float64 `json:"-"`
	Percentile95    float64 `json:"-"`

	AvailabilityPercent  float64 `json:"availability_percent"`
	TotalDataTransferred int64   `json:"total_data_transferred"`
	ThroughputPerSecond  float64 `json:"throughput_per_sec"`

	// JSON-friendly millisecond fields. Min is reported as 0 when no
	// successful samples exist.
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	MinResponseTimeMs float64 `json:"min_response_time_ms"`
	MaxResponseTimeMs float64 `json:"max_response_time_ms"`
	Percentile95Ms    float64 `json:"p95_response_time_ms"`
}

// Track latencies from 1µs up to 60s with 3 significant figures.
const (
	histMinMicros = 1
	histMaxMicros = 60_000_000
	histSigFigs   = 3
)

// NewStats returns zero-valued statistics: no requests, full availability,
// and the "no successes" latency defaults.
func NewStats() Stats {
	return Stats{
		MinResponseTime:     math.Inf(1),
		AvailabilityPercent: 100,
	}
}

// Compute derives statistics from a sample set. An empty set returns
// NewStats() unchanged. The throughput figure uses the wall-clock span
// between the first and last sample in the given order.
func Compute(samples []Sample) Stats {
	stats := NewStats()
	if len(samples) == 0 {
		return stats
	}

	stats.TotalRequests = int64(len(samples))
	for _, s := range samples {
		if s.Success {
			stats.SuccessfulRequests++
		}
	}
	stats.FailedRequests = stats.TotalRequests - stats.SuccessfulRequests
	stats.AvailabilityPercent = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests) * 100

	var sum float64
	var succ int64
	hist := hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs)
	for _, s := range samples {
		if !s.Success {
			continue
		}
		succ++
		sec := s.ResponseTime.Seconds()
		sum += sec
		if sec < stats.MinResponseTime {
			stats.MinResponseTime = sec
		}
		if sec > stats.MaxResponseTime {
			stats.MaxResponseTime = sec
		}
		stats.TotalDataTransferred += s.ResponseSize

		us := s.ResponseTime.Microseconds()
		if us < histMinMicros {
			us = histMinMicros
		}
		if us > histMaxMicros {
			us = histMaxMicros
		}
		_ = hist.RecordValue(us)
	}
	if succ > 0 {
		stats.AvgResponseTime = sum / float64(succ)
	}
	if succ >= 2 {
		stats.Percentile95 = (time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond).Seconds()
	}

	span := samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp).Seconds()
	if span > 0 && len(samples) >= 2 {
		stats.ThroughputPerSecond = float64(stats.TotalRequests) / span
	}

	stats.fillMillis()
	return stats
}

func (s *Stats) fillMillis() {
	const msPerSec = 1000
	s.AvgResponseTimeMs = s.AvgResponseTime * msPerSec
	if !math.IsInf(s.MinResponseTime, 1) {
		s.MinResponseTimeMs = s.MinResponseTime * msPerSec
	}
	s.MaxResponseTimeMs = s.MaxResponseTime * msPerSec
	s.Percentile95Ms = s.Percentile95 * msPerSec
}
