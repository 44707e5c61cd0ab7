package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/apipulse/apipulse/internal/config"
	"github.com/apipulse/apipulse/internal/metrics"
	"github.com/apipulse/apipulse/internal/monitor"
	"github.com/apipulse/apipulse/internal/output"
	"github.com/apipulse/apipulse/internal/probe"
	"github.com/apipulse/apipulse/internal/runner"
	"github.com/apipulse/apipulse/internal/threshold"
	"github.com/apipulse/apipulse/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(sample metrics.Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[apipulse] probe failed: %s status=%d %s\n",
		sample.Endpoint, sample.StatusCode, sample.ErrorMessage)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	var logger runner.FailureLogger
	if cfg.LogErrors {
		logger = &stderrFailureLogger{}
	}

	mon := monitor.New(monitor.Options{
		Timeout: cfg.Timeout,
		Tracing: provider,
		Logger:  logger,
	})
	defer mon.Close()

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && cfg.Mode != config.ModeProbe {
		progress = output.NewProgressReporter(mon.Store(), progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	switch cfg.Mode {
	case config.ModeProbe:
		err = runProbe(ctx, mon, cfg)
	case config.ModeLoad:
		err = runLoad(ctx, mon, cfg)
	case config.ModeMonitor:
		err = runMonitor(ctx, mon, cfg)
	default:
		err = fmt.Errorf("unknown mode: %q", cfg.Mode)
	}
	if err != nil {
		return err
	}

	report := mon.DetailedReport()
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else if cfg.Mode != config.ModeProbe {
		output.PrintReport(os.Stdout, report.Report)
	}

	if cfg.ReportFile != "" {
		if err := output.WriteJSONReport(cfg.ReportFile, report); err != nil {
			return err
		}
	}

	results := threshold.NewEvaluator(thresholds).Evaluate(report.Summary)
	if len(results) > 0 {
		output.PrintThresholdResults(os.Stdout, results)
		if !threshold.AllPassed(results) {
			return fmt.Errorf("thresholds not met")
		}
	}
	return nil
}

func runProbe(ctx context.Context, mon *monitor.Monitor, cfg *config.Config) error {
	sample, err := mon.TestSingleEndpoint(ctx, cfg.Targets[0], cfg.Method)
	if err != nil {
		return err
	}
	if !cfg.JSONOutput {
		output.PrintSample(os.Stdout, sample)
	}
	return nil
}

func runLoad(ctx context.Context, mon *monitor.Monitor, cfg *config.Config) error {
	_, err := mon.LoadTest(ctx, monitor.LoadTestOptions{
		URL:           cfg.Targets[0],
		Method:        cfg.Method,
		Headers:       cfg.Headers,
		Body:          cfg.Body,
		Concurrency:   cfg.Concurrency,
		Total:         cfg.Total,
		Delay:         cfg.Delay,
		RatePerSecond: cfg.Rate,
		Assert:        bodyAssertion(cfg),
	})
	return err
}

func runMonitor(ctx context.Context, mon *monitor.Monitor, cfg *config.Config) error {
	result, err := mon.MonitorContinuously(ctx, cfg.Targets, cfg.Interval, cfg.Duration)
	if err != nil {
		return err
	}
	if !cfg.JSONOutput {
		fmt.Fprintf(os.Stdout, "\nCompleted %d rounds (%d samples) in %s\n",
			result.Rounds, result.Samples, result.Elapsed.Round(time.Millisecond))
	}
	return nil
}

func bodyAssertion(cfg *config.Config) *probe.BodyAssertion {
	if cfg.AssertPath == "" {
		return nil
	}
	return &probe.BodyAssertion{
		Path:   cfg.AssertPath,
		Equals: cfg.AssertEquals,
	}
}
