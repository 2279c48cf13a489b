package defaults

import "time"

// Container operation timeouts.
const (
	// PullTimeout bounds a single base-image pull.
	PullTimeout = 10 * time.Minute

	// BuildTimeout bounds building the autoconfig image from the base.
	BuildTimeout = 10 * time.Minute

	// ExtractTimeout bounds one full autoconfig run inside the container.
	// Building Bazel from source dominates the worst case.
	ExtractTimeout = 30 * time.Minute

	// CleanupTimeout bounds best-effort container stop/remove calls, which
	// run on a background context after the caller's context may already be
	// cancelled.
	CleanupTimeout = 30 * time.Second
)

// HTTP surface timeouts.
const (
	// HandlerTimeout bounds a single compile/validate request.
	HandlerTimeout = 30 * time.Second

	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Registry operation timeouts.
const (
	// PushTimeout bounds pushing a packaged bundle to an OCI registry.
	PushTimeout = 5 * time.Minute
)
