// Package probe executes single HTTP requests and converts their outcomes
// into metric samples.
//
// The central contract is that [Executor.Execute] never returns an error:
// DNS failures, refused connections, timeouts, and transport resets all
// become failed samples with a sentinel status code of 0, while non-2xx/3xx
// responses become failed samples carrying an "HTTP <code>" message. The
// batch layers above count on one sample per attempt, no exceptions.
package probe
