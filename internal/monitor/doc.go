// Package monitor ties the probe executor, load runner, poller, and metric
// store together behind a single facade. Callers construct explicit Monitor
// instances; there is no shared global state.
package monitor
