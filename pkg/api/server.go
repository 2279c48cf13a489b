package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/logging"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
	"github.com/nlopezgi/bazel-toolchains/pkg/server"
)

const (
	name           = "autoconfig-api-server"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/nlopezgi/bazel-toolchains/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, sets up routes, and handles graceful shutdown.
// Returns an error if the server fails to start or encounters a fatal error.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	// Setup compile and validate handlers
	c := script.New(script.WithVersion(version))

	r := map[string]http.HandlerFunc{
		"/v1/autoconfig/compile":  c.HandleCompile,
		"/v1/autoconfig/validate": autoconf.HandleValidate,
		"/v1/autoconfig/sample":   autoconf.HandleSample,
	}

	// Create and run server
	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithBuildInfo(commit, date),
		server.WithHandler(r),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
