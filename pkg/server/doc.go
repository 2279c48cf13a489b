// Package server provides the HTTP server for the autoconfig API.
//
// The server owns the system endpoints (/healthz, /ready, /version,
// /metrics) and the middleware chain; API handlers are registered by the
// caller as a path-to-handler map. Every failed request is reported with
// the same JSON error envelope, built by WriteError and WriteErrorFromErr
// from the structured error codes in pkg/errors.
//
// # Middleware
//
// API routes pass through request id assignment, request logging,
// Prometheus metrics, and token bucket rate limiting, in that order.
// System endpoints bypass the chain so probes are never throttled.
//
// # API versioning
//
// Clients may negotiate an API version through the Accept header using the
// vendor media type, as in "application/vnd.bazel-toolchains.v1+json".
// Unsupported or absent versions fall back to DefaultAPIVersion.
//
// # Lifecycle
//
// Run blocks until the context is cancelled or a termination signal
// arrives, then shuts down gracefully within Config.ShutdownTimeout. When
// running under systemd, readiness and stopping states are reported via
// sd_notify.
package server
