// Package httpclient constructs the shared HTTP client used for probing.
//
// The client carries a tuned [net/http.Transport] with generous idle
// connection pools so that high-concurrency load tests reuse connections
// instead of exhausting sockets. A timeout of zero disables the per-request
// deadline.
package httpclient
