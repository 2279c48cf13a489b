package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/bundle"
	"github.com/nlopezgi/bazel-toolchains/pkg/oci"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
)

func compileCmd() *cli.Command {
	return &cli.Command{
		Name:                  "compile",
		EnableShellCompletion: true,
		Usage:                 "Compile autoconfig requests into toolchain config bundles",
		Description: `Compiles one or more AutoconfigRequest documents into install-script
bundles, one output subdirectory per request name. Compilation is pure: no
container runtime is touched, so the same request always produces the same
bundle.

# Bundle Layout

  - <name>.sh: the generated install script (executable)
  - mounts.yaml: bind mounts the script expects (only when it needs any)
  - checks.sh: output verification commands (unless the request sets test: false)
  - manifest.yaml: bundle manifest describing the pieces
  - checksums.txt: SHA256 checksums of the other files

# Examples

Compile a request into ./bundles/<name>:
  autoconfig compile --request request.yaml --output ./bundles

Compile several requests in parallel:
  autoconfig compile -r debian.yaml -r ubuntu.yaml -o ./bundles

Skip the manifest and checksum files:
  autoconfig compile -r request.yaml --manifest=false --checksums=false

Push each bundle to an OCI registry:
  autoconfig compile -r request.yaml --output ./bundles \
    --push --registry ghcr.io --repository bazelbuild/autoconfig --tag v1.0.0`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "Path to an AutoconfigRequest document (YAML or JSON, can be repeated)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Output directory; each request is written to <output>/<name>",
			},
			formatFlag(),
			&cli.BoolFlag{
				Name:  "checksums",
				Value: true,
				Usage: "Write checksums.txt into each bundle",
			},
			&cli.BoolFlag{
				Name:  "manifest",
				Value: true,
				Usage: "Write manifest.yaml into each bundle",
			},
			// OCI push flags
			&cli.BoolFlag{
				Name:  "push",
				Usage: "Push each generated bundle as an OCI artifact to a registry",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "OCI registry host (e.g., ghcr.io, localhost:5000)",
			},
			&cli.StringFlag{
				Name:  "repository",
				Usage: "OCI repository path (e.g., bazelbuild/autoconfig)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "OCI tag (default: latest, or the request name when compiling several requests)",
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
		Action: compileAction,
	}
}

func compileAction(ctx context.Context, cmd *cli.Command) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	requestPaths := cmd.StringSlice("request")
	outputDir := cmd.String("output")

	// OCI push options
	pushEnabled := cmd.Bool("push")
	registryHost := cmd.String("registry")
	repository := cmd.String("repository")
	tag := cmd.String("tag")

	// Validate push flags
	if pushEnabled {
		if registryHost == "" {
			return fmt.Errorf("--registry is required when --push is enabled")
		}
		if repository == "" {
			return fmt.Errorf("--repository is required when --push is enabled")
		}
		if err := oci.ValidateRegistryReference(oci.BuildReference(registryHost, repository, tag)); err != nil {
			return fmt.Errorf("invalid OCI reference: %w", err)
		}
	}

	requests, err := loadRequests(requestPaths)
	if err != nil {
		return err
	}

	if pushEnabled && tag != "" && len(requests) > 1 {
		return fmt.Errorf("--tag addresses a single bundle; omit it to tag each pushed bundle by its request name")
	}

	slog.Info("compiling requests",
		slog.Int("count", len(requests)),
		slog.String("output", outputDir),
	)

	compiler := script.New(script.WithVersion(version))
	writer := bundle.NewWriter(
		bundle.WithChecksums(cmd.Bool("checksums")),
		bundle.WithManifest(cmd.Bool("manifest")),
		bundle.WithVersion(version),
	)

	// Compilation is pure and the writers target disjoint directories, so
	// the requests fan out without coordination.
	compiled := make([]*script.CompiledScript, len(requests))
	results := make([]*bundle.Result, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			cs, err := compiler.Compile(req)
			if err != nil {
				return err
			}
			res, err := writer.Write(gctx, cs, filepath.Join(outputDir, cs.Name()))
			if err != nil {
				return err
			}
			compiled[i], results[i] = cs, res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("compilation failed", "error", err)
		return err
	}

	printStageSummaries(compiled, results)

	if err := serializer.NewStdoutWriter(outFormat).Serialize(ctx, results); err != nil {
		return err
	}

	if pushEnabled {
		return pushBundles(ctx, cmd, results)
	}
	return nil
}

// loadRequests loads and validates every request document, rejecting name
// collisions since each request claims the output subdirectory of its name.
func loadRequests(paths []string) ([]*autoconf.Request, error) {
	requests := make([]*autoconf.Request, 0, len(paths))
	seen := make(map[string]string, len(paths))

	for _, path := range paths {
		req, err := autoconf.Load(path)
		if err != nil {
			slog.Error("failed to load request", "error", err, "path", path)
			return nil, err
		}
		if err := autoconf.Validate(req); err != nil {
			return nil, fmt.Errorf("invalid request %s: %w", path, err)
		}

		name := req.Name()
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("request %s reuses the name %q already taken by %s", path, name, prev)
		}
		seen[name] = path
		requests = append(requests, req)
	}
	return requests, nil
}

// printStageSummaries prints a per-request breakdown of the generated script
// stages.
func printStageSummaries(compiled []*script.CompiledScript, results []*bundle.Result) {
	caser := cases.Title(language.English)
	for i, cs := range compiled {
		fmt.Printf("\nCompiled %s: %s\n", cs.Name(), results[i].Summary())
		for _, stage := range cs.Stages {
			fmt.Printf("  %s: %d commands\n", caser.String(stage.Name), stage.Commands)
		}
	}
}

// pushBundles packages each bundle directory as an OCI artifact and pushes it
// to the registry named by the push flags. The layout stores live under
// <output>/.oci so the bundle directories stay exactly as written.
func pushBundles(ctx context.Context, cmd *cli.Command, results []*bundle.Result) error {
	registryHost := cmd.String("registry")
	repository := cmd.String("repository")
	tag := cmd.String("tag")

	for _, res := range results {
		imageTag := tag
		if imageTag == "" {
			if len(results) > 1 {
				imageTag = res.Name
			} else {
				imageTag = "latest"
			}
		}
		ref := oci.BuildReference(registryHost, repository, imageTag)

		absDir, err := filepath.Abs(res.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to resolve bundle directory: %w", err)
		}

		slog.Info("pushing bundle to OCI registry",
			"registry", registryHost,
			"repository", repository,
			"tag", imageTag,
		)

		packageResult, err := oci.Package(ctx, oci.PackageOptions{
			SourceDir: absDir,
			StoreDir:  filepath.Join(filepath.Dir(absDir), ".oci", res.Name),
			Reference: ref,
			Name:      res.Name,
		})
		if err != nil {
			return fmt.Errorf("failed to package OCI artifact: %w", err)
		}

		slog.Info("OCI artifact packaged locally",
			"reference", packageResult.Reference,
			"digest", packageResult.Digest,
			"store_path", packageResult.StorePath,
		)

		pushResult, err := oci.Push(ctx, oci.PushOptions{
			StoreDir:    packageResult.StorePath,
			Reference:   ref,
			PlainHTTP:   cmd.Bool("plain-http"),
			InsecureTLS: cmd.Bool("insecure-tls"),
		})
		if err != nil {
			return fmt.Errorf("failed to push OCI artifact to registry: %w", err)
		}

		slog.Info("OCI artifact pushed successfully",
			"reference", pushResult.Reference,
			"digest", pushResult.Digest,
		)
	}
	return nil
}
