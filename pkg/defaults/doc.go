// Package defaults provides centralized configuration constants for the
// autoconfig toolchain.
//
// This package defines timeout values used across the codebase. Centralizing
// these values ensures consistency and makes tuning easier.
//
// # Timeout Categories
//
// Timeouts are organized by component:
//
//   - Container timeouts: For image pull, build, and script execution
//   - Handler timeouts: For HTTP request processing
//   - Server timeouts: For HTTP server configuration
//   - Registry timeouts: For OCI push operations
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/nlopezgi/bazel-toolchains/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ExtractTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
// When choosing timeout values:
//
//   - Image pulls: 10m, large base images over slow links are common
//   - Autoconfig runs: 30m default, a from-source Bazel build dominates
//   - HTTP handlers: 30s, compilation is pure string assembly
//   - Server shutdown: 30s for graceful shutdown
package defaults
