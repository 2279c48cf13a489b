package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/logging"
)

const binaryName = "autoconfig"

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/nlopezgi/bazel-toolchains/pkg/cli.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared by the commands that serialize a document to a destination.
// Constructed per command since flag instances carry parse state.
func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   "yaml",
		Usage:   "Output format: yaml, json, table",
	}
}

// New builds the autoconfig command tree.
func New() *cli.Command {
	return &cli.Command{
		Name:                  binaryName,
		Usage:                 "Generate Bazel toolchain configs for container images",
		Version:               version,
		EnableShellCompletion: true,
		ShellComplete:         commandLister,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Output logs in JSON format",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultLogger(cmd.Bool("debug"), cmd.Bool("log-json"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			compileCmd(),
			validateCmd(),
			runCmd(),
			pushCmd(),
			sampleCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

// commandLister prints the visible command names, one per line, for shell
// completion.
func commandLister(_ context.Context, cmd *cli.Command) {
	if cmd == nil {
		return
	}
	for _, c := range cmd.Commands {
		if c.Hidden {
			continue
		}
		fmt.Println(c.Name)
	}
}
