package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
)

func sampleCmd() *cli.Command {
	return &cli.Command{
		Name:                  "sample",
		EnableShellCompletion: true,
		Usage:                 "Print the built-in sample autoconfig request",
		Description: `Prints the built-in sample AutoconfigRequest document, a complete request
suitable as a starting point for new configurations.

# Examples

Write the sample as a new request file:
  autoconfig sample --output request.yaml

Print it as JSON:
  autoconfig sample --format json`,
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sample, err := autoconf.SampleRequest()
			if err != nil {
				return err
			}
			return serializeTo(ctx, cmd, sample)
		},
	}
}
