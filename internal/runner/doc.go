// Package runner provides the load test execution engine.
//
// A [Runner] issues a fixed number of probes against one target while a
// counting semaphore caps how many run simultaneously. All tasks are
// scheduled up front; the semaphore is the sole throttle, so there is no
// guarantee about which logical request starts or finishes first — only the
// in-flight count is bounded. An optional fixed delay is held inside each
// slot after the probe completes, and an optional requests-per-second pacer
// (a [golang.org/x/time/rate.Limiter]) can smooth arrivals on top of the
// semaphore.
//
//	opts := runner.Options{
//		Concurrency: 10,
//		Total:       100,
//		Delay:       100 * time.Millisecond,
//		Prober:      executor.Bind(target),
//		Store:       store,
//	}
//	samples := runner.New(opts).Run(ctx)
//
// Probes themselves cannot fail (see the probe package); the only way a
// task produces no sample is cancellation before its probe starts, in which
// case it is silently excluded from the result.
//
// No retries happen here. A failed probe yields one failed sample and is
// not reattempted; callers wanting retries loop themselves.
package runner
