// Package metrics holds probe samples and derives aggregate statistics
// from them.
//
// The unit of record is the [Sample]: one immutable row per HTTP probe
// attempt, successful or not. Samples accumulate in a [Store], which is the
// only shared mutable state in the engine and is safe for concurrent
// appends.
//
// Statistics are never stored; they are recomputed on demand from the
// (optionally filtered) sample set:
//
//	store := metrics.NewStore()
//	store.Append(sample)
//	stats := store.Stats(metrics.Query{Endpoint: "/users", Window: 5 * time.Minute})
//	fmt.Printf("availability: %.1f%%\n", stats.AvailabilityPercent)
//
// Latency aggregates (avg, min, max, p95) cover successful samples only.
// With zero successful samples they keep their defaults — avg 0, min +Inf,
// max 0, p95 0 — instead of erroring out. The 95th percentile comes from an
// HDR histogram rebuilt per query and requires at least two successful
// samples.
//
// [Store.Report] produces the structured detailed report: per-endpoint
// statistics plus a top-10 histogram of distinct error messages across all
// failed samples.
package metrics
