package metrics

import (
	"fmt"
	"time"
)

// Sample records the outcome of a single HTTP probe. A sample is created
// exactly once per request attempt, appended to a Store, and never mutated
// afterwards; the store only supports bulk clearing.
type Sample struct {
	Timestamp    time.Time     `json:"timestamp"`
	Endpoint     string        `json:"endpoint"`
	ResponseTime time.Duration `json:"-"`
	StatusCode   int           `json:"status_code"` // 0 when no response was obtained
	ResponseSize int64         `json:"response_size"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"error_message,omitempty"` // set iff Success is false

	// JSON-friendly millisecond latency.
	ResponseTimeMs float64 `json:"response_time_ms"`
}

// NewSample builds a sample from an obtained HTTP response. Success is
// derived from the status code range [200,400); out-of-range codes produce
// a failed sample carrying an "HTTP <code>" error message.
func NewSample(ts time.Time, endpoint string, latency time.Duration, statusCode int, size int64) Sample {
	s := Sample{
		Timestamp:      ts,
		Endpoint:       endpoint,
		ResponseTime:   latency,
		StatusCode:     statusCode,
		ResponseSize:   size,
		ResponseTimeMs: float64(latency) / float64(time.Millisecond),
	}
	if statusCode >= 200 && statusCode < 400 {
		s.Success = true
	} else {
		s.ErrorMessage = fmt.Sprintf("HTTP %d", statusCode)
	}
	return s
}

// NewFailedSample builds a sample for a probe that obtained no response at
// all (DNS failure, refused connection, timeout, transport error).
func NewFailedSample(ts time.Time, endpoint string, latency time.Duration, errMsg string) Sample {
	return Sample{
		Timestamp:      ts,
		Endpoint:       endpoint,
		ResponseTime:   latency,
		ResponseTimeMs: float64(latency) / float64(time.Millisecond),
		ErrorMessage:   errMsg,
	}
}

// WithFailure returns a copy of the sample downgraded to a failure, keeping
// the original status code and size. Used when a response was obtained but a
// body assertion rejected it.
func (s Sample) WithFailure(errMsg string) Sample {
	s.Success = false
	s.ErrorMessage = errMsg
	return s
}
