package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apipulse",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Mode and target flags
	flags.StringP("mode", "m", string(ModeLoad), "Operation mode: probe, load, or monitor")
	flags.StringSlice("target", nil, "Target URL (repeatable in monitor mode)")
	flags.String("targets-file", "", "Path to a YAML file listing target URLs")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("body", "", "Inline request body payload")

	// Load control flags
	flags.IntP("concurrency", "c", 10, "Max probes in flight at once")
	flags.IntP("total", "t", 100, "Total number of probes to issue")
	flags.Duration("delay", 100*time.Millisecond, "Pause after each probe before its concurrency slot is reused")
	flags.IntP("rate", "r", 0, "Requests per second pacing (0 means unlimited)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")

	// Monitor flags
	flags.DurationP("interval", "i", 5*time.Second, "Sleep between polling rounds")
	flags.DurationP("duration", "d", time.Minute, "Total polling duration")

	// Response assertion flags
	flags.String("assert-path", "", "gjson path that must exist in the response body")
	flags.String("assert-equals", "", "Expected value at assert-path")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("log-errors", false, "Log each failed probe to stderr")
	flags.String("report-file", "", "Write the detailed JSON report to the given path")
	flags.StringSlice("threshold", nil, "Performance assertion, e.g. 'availability>=99.5' or 'p95<0.25'")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.Bool("tracing", false, "Enable OpenTelemetry tracing for probes")
	flags.String("tracing-endpoint", "", "OTLP exporter endpoint")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("tracing-service", "", "Service name reported on spans")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Bool("tracing-propagate", false, "Inject W3C trace context headers into probes")
}
