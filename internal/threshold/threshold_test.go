package threshold

import (
	"math"
	"testing"

	"github.com/apipulse/apipulse/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "availability with >=",
			input: "availability >= 99.5",
			want: Threshold{
				Metric:   "availability",
				Operator: ">=",
				Value:    99.5,
				Raw:      "availability >= 99.5",
			},
		},
		{
			name:  "p95 latency in seconds",
			input: "p95 < 0.25",
			want: Threshold{
				Metric:   "p95",
				Operator: "<",
				Value:    0.25,
				Raw:      "p95 < 0.25",
			},
		},
		{
			name:  "error rate without spaces",
			input: "error_rate<0.01",
			want: Threshold{
				Metric:   "error_rate",
				Operator: "<",
				Value:    0.01,
				Raw:      "error_rate<0.01",
			},
		},
		{
			name:  "throughput with >",
			input: "throughput > 100",
			want: Threshold{
				Metric:   "throughput",
				Operator: ">",
				Value:    100,
				Raw:      "throughput > 100",
			},
		},
		{
			name:  "failures equality",
			input: "failures == 0",
			want: Threshold{
				Metric:   "failures",
				Operator: "==",
				Value:    0,
				Raw:      "failures == 0",
			},
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "missing operator",
			input:     "availability 99.5",
			wantError: true,
		},
		{
			name:      "unknown metric",
			input:     "jitter < 5",
			wantError: true,
		},
		{
			name:      "invalid operator",
			input:     "p95 << 0.5",
			wantError: true,
		},
		{
			name:      "missing value",
			input:     "p95 <",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	parsed, err := ParseMultiple([]string{"availability >= 99", "p95 < 0.5"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("ParseMultiple() len = %d, want 2", len(parsed))
	}

	if _, err := ParseMultiple([]string{"availability >= 99", "bogus"}); err == nil {
		t.Error("ParseMultiple() error = nil, want error for invalid entry")
	}

	parsed, err = ParseMultiple(nil)
	if err != nil || parsed != nil {
		t.Errorf("ParseMultiple(nil) = %v, %v, want nil, nil", parsed, err)
	}
}

func TestEvaluate(t *testing.T) {
	stats := metrics.Stats{
		TotalRequests:       100,
		SuccessfulRequests:  95,
		FailedRequests:      5,
		AvgResponseTime:     0.120,
		MinResponseTime:     0.010,
		MaxResponseTime:     0.900,
		Percentile95:        0.300,
		AvailabilityPercent: 95,
		ThroughputPerSecond: 50,
	}

	tests := []struct {
		expr string
		pass bool
	}{
		{"availability >= 95", true},
		{"availability >= 99", false},
		{"avg < 0.2", true},
		{"min > 0.005", true},
		{"max < 0.5", false},
		{"p95 <= 0.3", true},
		{"throughput > 40", true},
		{"error_rate < 0.01", false},
		{"error_rate <= 0.05", true},
		{"failures == 5", true},
		{"total >= 100", true},
	}

	thresholds := make([]Threshold, 0, len(tests))
	for _, tt := range tests {
		parsed, err := Parse(tt.expr)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.expr, err)
		}
		thresholds = append(thresholds, parsed)
	}

	results := NewEvaluator(thresholds).Evaluate(stats)
	if len(results) != len(tests) {
		t.Fatalf("Evaluate() len = %d, want %d", len(results), len(tests))
	}
	for i, tt := range tests {
		if results[i].Pass != tt.pass {
			t.Errorf("Evaluate(%q) pass = %v, want %v (%s)", tt.expr, results[i].Pass, tt.pass, results[i].Message)
		}
	}

	if AllPassed(results) {
		t.Error("AllPassed() = true, want false with failing thresholds")
	}
}

func TestEvaluateEmptyStats(t *testing.T) {
	stats := metrics.NewStats()
	results := NewEvaluator([]Threshold{
		mustParse(t, "availability >= 99"),
		mustParse(t, "min < 1"),
	}).Evaluate(stats)

	// Empty stats defaults: availability 100, min reported as 0.
	if !results[0].Pass {
		t.Errorf("availability on empty stats: pass = false, want true (%s)", results[0].Message)
	}
	if !results[1].Pass || !math.IsInf(stats.MinResponseTime, 1) {
		t.Errorf("min on empty stats should evaluate as 0: %s", results[1].Message)
	}
}

func TestEvaluateNoThresholds(t *testing.T) {
	if results := NewEvaluator(nil).Evaluate(metrics.NewStats()); results != nil {
		t.Errorf("Evaluate() = %v, want nil", results)
	}
}

func mustParse(t *testing.T, s string) Threshold {
	t.Helper()
	parsed, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", s, err)
	}
	return parsed
}
