package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Precedence: defaults < config file < explicitly set flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flags := cmd.Flags()
	if helpFlag := flags.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flags.Lookup("config").Value.String()

	cfg := defaultConfig()
	cfg.ConfigFile = configPath

	if configPath != "" {
		v := viper.New()
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyFlagOverrides(cfg, flags); err != nil {
		return nil, err
	}

	if cfg.TargetsFile != "" {
		fileTargets, err := loadTargetsFile(cfg.TargetsFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, fileTargets...)
	}

	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	for i, target := range cfg.Targets {
		cfg.Targets[i] = strings.TrimSpace(target)
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Mode:        ModeLoad,
		Method:      "GET",
		Headers:     map[string]string{},
		Concurrency: 10,
		Total:       100,
		Delay:       100 * time.Millisecond,
		Interval:    5 * time.Second,
		Duration:    time.Minute,
		Timeout:     30 * time.Second,
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// applyFlagOverrides copies values from explicitly set flags onto the
// config, overriding anything from the config file.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var firstErr error
	flags.Visit(func(f *pflag.Flag) {
		if firstErr != nil {
			return
		}
		switch f.Name {
		case "mode":
			s, _ := flags.GetString("mode")
			cfg.Mode = Mode(s)
		case "target":
			targets, _ := flags.GetStringSlice("target")
			cfg.Targets = targets
		case "targets-file":
			cfg.TargetsFile, _ = flags.GetString("targets-file")
		case "method":
			cfg.Method, _ = flags.GetString("method")
		case "header":
			raw, _ := flags.GetStringSlice("header")
			headers, err := parseHeaderPairs(raw)
			if err != nil {
				firstErr = err
				return
			}
			for key, value := range headers {
				cfg.Headers[key] = value
			}
		case "body":
			cfg.Body, _ = flags.GetString("body")
		case "concurrency":
			cfg.Concurrency, _ = flags.GetInt("concurrency")
		case "total":
			cfg.Total, _ = flags.GetInt("total")
		case "delay":
			cfg.Delay, _ = flags.GetDuration("delay")
		case "rate":
			cfg.Rate, _ = flags.GetInt("rate")
		case "timeout":
			cfg.Timeout, _ = flags.GetDuration("timeout")
		case "interval":
			cfg.Interval, _ = flags.GetDuration("interval")
		case "duration":
			cfg.Duration, _ = flags.GetDuration("duration")
		case "assert-path":
			cfg.AssertPath, _ = flags.GetString("assert-path")
		case "assert-equals":
			cfg.AssertEquals, _ = flags.GetString("assert-equals")
		case "json-output":
			cfg.JSONOutput, _ = flags.GetBool("json-output")
		case "log-errors":
			cfg.LogErrors, _ = flags.GetBool("log-errors")
		case "report-file":
			cfg.ReportFile, _ = flags.GetString("report-file")
		case "threshold":
			cfg.Thresholds, _ = flags.GetStringSlice("threshold")
		case "tracing":
			cfg.Tracing.Enabled, _ = flags.GetBool("tracing")
		case "tracing-endpoint":
			cfg.Tracing.Endpoint, _ = flags.GetString("tracing-endpoint")
		case "tracing-protocol":
			cfg.Tracing.Protocol, _ = flags.GetString("tracing-protocol")
		case "tracing-service":
			cfg.Tracing.ServiceName, _ = flags.GetString("tracing-service")
		case "tracing-sample-rate":
			cfg.Tracing.SampleRate, _ = flags.GetFloat64("tracing-sample-rate")
		case "tracing-insecure":
			cfg.Tracing.Insecure, _ = flags.GetBool("tracing-insecure")
		case "tracing-propagate":
			cfg.Tracing.Propagate, _ = flags.GetBool("tracing-propagate")
		}
	})
	return firstErr
}

// parseHeaderPairs parses repeated key=value header flags.
func parseHeaderPairs(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, pair := range raw {
		key, value, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected key=value", pair)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "apipulse - HTTP endpoint probing, load testing, and metrics aggregation")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  apipulse --mode probe --target https://api.example.com/health")
	fmt.Fprintln(out, "  apipulse --mode load --target https://api.example.com/users -c 10 -t 100")
	fmt.Fprintln(out, "  apipulse --mode monitor --target https://a.test --target https://b.test -i 5s -d 1m")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, cmd.Flags().FlagUsages())
}
