package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/bundle"
	"github.com/nlopezgi/bazel-toolchains/pkg/oci"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
)

func pushCmd() *cli.Command {
	return &cli.Command{
		Name:                  "push",
		EnableShellCompletion: true,
		Usage:                 "Push compiled bundles to an OCI registry",
		Description: `Pushes previously compiled bundle directories to an OCI registry without
recompiling them. The bundle name is recovered from manifest.yaml, falling
back to the directory name for bundles written without a manifest.

# Examples

Push one bundle:
  autoconfig push --bundle ./bundles/debian-test \
    --registry ghcr.io --repository bazelbuild/autoconfig --tag v1.0.0

Push several bundles, each tagged by its name:
  autoconfig push -b ./bundles/debian -b ./bundles/ubuntu \
    --registry ghcr.io --repository bazelbuild/autoconfig`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "bundle",
				Aliases:  []string{"b"},
				Required: true,
				Usage:    "Path to a compiled bundle directory (can be repeated)",
			},
			&cli.StringFlag{
				Name:     "registry",
				Required: true,
				Usage:    "OCI registry host (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:     "repository",
				Required: true,
				Usage:    "OCI repository path (e.g., bazelbuild/autoconfig)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "OCI tag (default: latest, or the bundle name when pushing several bundles)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the OCI registry",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the OCI registry (for local development)",
			},
		},
		Action: pushAction,
	}
}

func pushAction(ctx context.Context, cmd *cli.Command) error {
	bundleDirs := cmd.StringSlice("bundle")
	registryHost := cmd.String("registry")
	repository := cmd.String("repository")
	tag := cmd.String("tag")

	if err := oci.ValidateRegistryReference(oci.BuildReference(registryHost, repository, tag)); err != nil {
		return fmt.Errorf("invalid OCI reference: %w", err)
	}
	if tag != "" && len(bundleDirs) > 1 {
		return fmt.Errorf("--tag addresses a single bundle; omit it to tag each pushed bundle by its name")
	}

	results := make([]*bundle.Result, 0, len(bundleDirs))
	seen := make(map[string]string, len(bundleDirs))
	for _, dir := range bundleDirs {
		name, err := bundleName(dir)
		if err != nil {
			return err
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("bundle %s reuses the name %q already taken by %s", dir, name, prev)
		}
		seen[name] = dir

		slog.Info("bundle resolved", "bundle", dir, "name", name)
		results = append(results, &bundle.Result{Name: name, OutputDir: dir})
	}

	return pushBundles(ctx, cmd, results)
}

// bundleName recovers the request name a bundle was compiled for: from its
// manifest when one was written, from the directory name otherwise.
func bundleName(dir string) (string, error) {
	manifestPath := filepath.Join(dir, bundle.ManifestFileName)
	if _, err := os.Stat(manifestPath); err != nil {
		if os.IsNotExist(err) {
			return filepath.Base(filepath.Clean(dir)), nil
		}
		return "", fmt.Errorf("failed to read bundle manifest %s: %w", manifestPath, err)
	}

	manifest, err := serializer.FromFile[bundle.Manifest](manifestPath)
	if err != nil {
		return "", err
	}
	if name := manifest.Name(); name != "" {
		return name, nil
	}
	return filepath.Base(filepath.Clean(dir)), nil
}
