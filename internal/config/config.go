package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mode selects which operation the CLI runs.
type Mode string

const (
	ModeProbe   Mode = "probe"   // single endpoint test
	ModeLoad    Mode = "load"    // load test against one endpoint
	ModeMonitor Mode = "monitor" // continuous polling of one or more endpoints
)

type Config struct {
	Mode        Mode              `mapstructure:"mode"`
	Targets     []string          `mapstructure:"targets"`
	TargetsFile string            `mapstructure:"targets_file"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`

	Concurrency int           `mapstructure:"concurrency"`
	Total       int           `mapstructure:"total"`
	Delay       time.Duration `mapstructure:"delay"`
	Rate        int           `mapstructure:"rate"`

	Interval time.Duration `mapstructure:"interval"`
	Duration time.Duration `mapstructure:"duration"`
	Timeout  time.Duration `mapstructure:"timeout"`

	AssertPath   string `mapstructure:"assert_path"`
	AssertEquals string `mapstructure:"assert_equals"`

	JSONOutput bool     `mapstructure:"json_output"`
	LogErrors  bool     `mapstructure:"log_errors"`
	ReportFile string   `mapstructure:"report_file"`
	Thresholds []string `mapstructure:"thresholds"`

	Tracing TracingConfig `mapstructure:"tracing"`

	ConfigFile string `mapstructure:"-"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
	Propagate   bool    `mapstructure:"propagate"`
}

// ShouldPropagate reports whether W3C trace headers should be injected into
// outbound probes.
func (t TracingConfig) ShouldPropagate() bool {
	return t.Enabled && t.Propagate
}

// Validate rejects malformed input at the call boundary. Bad configuration
// is a caller mistake and fails fast; it is never downgraded into failed
// samples.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeProbe, ModeLoad, ModeMonitor:
	default:
		return fmt.Errorf("unknown mode %q: use probe, load, or monitor", c.Mode)
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target URL is required")
	}
	if c.Mode != ModeMonitor && len(c.Targets) > 1 {
		return fmt.Errorf("mode %q takes exactly one target, got %d", c.Mode, len(c.Targets))
	}
	for _, target := range c.Targets {
		if err := ValidateURL(target); err != nil {
			return err
		}
	}

	for key, value := range c.Headers {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" || strings.ContainsAny(trimmed, "\r\n") {
			return fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("invalid header value for %s", trimmed)
		}
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Total < 0 {
		return fmt.Errorf("total must not be negative, got %d", c.Total)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %d", c.Rate)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if c.Mode == ModeMonitor {
		if c.Interval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", c.Interval)
		}
		if c.Duration <= 0 {
			return fmt.Errorf("duration must be positive, got %s", c.Duration)
		}
	}

	if c.AssertEquals != "" && c.AssertPath == "" {
		return fmt.Errorf("assert-equals requires assert-path")
	}

	return nil
}

// ValidateURL checks that a target is an absolute http(s) URL. An invalid
// scheme is a hard error surfaced immediately, distinct from per-probe
// failures reported via samples.
func ValidateURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target URL %q must use http or https", target)
	}
	if u.Host == "" {
		return fmt.Errorf("target URL %q has no host", target)
	}
	return nil
}
