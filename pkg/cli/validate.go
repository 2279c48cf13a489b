package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate an autoconfig request document",
		Description: `Validates an AutoconfigRequest document against the request invariants:
required fields, reserved fields, mutually exclusive fields, and fields that
depend on each other. The outcome is printed as a ValidationResult document;
an invalid request additionally exits with code 1, so CI pipelines can gate
on it.

# Examples

Validate a request and print the result:
  autoconfig validate --request request.yaml

Validate in a pipeline, machine readable:
  autoconfig validate -r request.yaml --format json --output result.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "Path to the AutoconfigRequest document to validate",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			requestPath := cmd.String("request")
			data, err := os.ReadFile(requestPath)
			if err != nil {
				return fmt.Errorf("failed to read request from %q: %w", requestPath, err)
			}

			result, err := autoconf.ValidateDocument(data)
			if err != nil {
				return fmt.Errorf("failed to parse request document: %w", err)
			}

			if err := serializeTo(ctx, cmd, result); err != nil {
				return err
			}

			if !result.Valid() {
				return cli.Exit(fmt.Sprintf("request %q failed validation", result.Name()), 1)
			}
			return nil
		},
	}
}
