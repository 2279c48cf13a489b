package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Start the autoconfig HTTP API server",
		Description: `Starts the HTTP API server exposing the compiler over HTTP:

  POST /v1/autoconfig/compile   compile a request document
  POST /v1/autoconfig/validate  validate a request document
  GET  /v1/autoconfig/sample    the built-in sample request

plus /healthz, /version and /metrics. The server never touches a container
runtime; it serves the pure compilation path only.

The listen port comes from the PORT environment variable and the log level
from LOG_LEVEL. The server shuts down gracefully on SIGINT/SIGTERM and
notifies systemd readiness when launched under a notify socket.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return api.Serve()
		},
	}
}
