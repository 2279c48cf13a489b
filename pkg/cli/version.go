package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:                  "version",
		EnableShellCompletion: true,
		Usage:                 "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("%s %s\ncommit: %s\nbuilt: %s\n", binaryName, version, commit, date)
			return nil
		},
	}
}
