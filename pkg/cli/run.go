package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/image"
	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/container"
	"github.com/nlopezgi/bazel-toolchains/pkg/defaults"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Compile a request and run the toolchain configuration in Docker",
		Description: `Runs the full autoconfig pipeline for a single request:

  1. Load and validate the request document.
  2. Install requested debian packages on the base image (when any).
  3. Compile the request into the install script.
  4. Build the autoconfig image with the script and helpers staged.
  5. Run the script in a container and extract its outputs.
  6. Unpack the toolchain config archive and run log onto the host.
  7. Verify the outputs (unless the request sets test: false).

Steps 2, 4 and 5 talk to the Docker daemon named by the ambient environment
(DOCKER_HOST et al.). The committed pipeline images are removed afterwards
unless --keep-image is set.

# Examples

Run a request and collect outputs into ./out:
  autoconfig run --request request.yaml --output ./out

Keep the committed image for debugging and allow a longer run:
  autoconfig run -r request.yaml --keep-image --timeout 45m`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "Path to the AutoconfigRequest document to run",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Directory the toolchain archive and run log are written to",
			},
			&cli.BoolFlag{
				Name:  "keep-image",
				Usage: "Keep the committed autoconfig images instead of removing them",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.ExtractTimeout,
				Usage: "Timeout for the container run",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	requestPath := cmd.String("request")
	req, err := autoconf.Load(requestPath)
	if err != nil {
		slog.Error("failed to load request", "error", err, "path", requestPath)
		return err
	}
	if err := autoconf.Validate(req); err != nil {
		return err
	}

	compiled, err := script.New(script.WithVersion(version)).Compile(req)
	if err != nil {
		return err
	}
	name := compiled.Name()

	docker, err := container.NewClient(ctx)
	if err != nil {
		return err
	}

	slog.Info("running autoconfig pipeline",
		slog.String("name", name),
		slog.String("baseImage", req.Spec.BaseImage),
	)

	// Install returns the base image unchanged when no packages are
	// requested, and a committed <name>-deps image otherwise.
	baseImage, err := container.NewPackageInstaller(docker).Install(ctx, req)
	if err != nil {
		return err
	}

	var projectTar []byte
	if req.Spec.HasProjectTar() {
		if req.Spec.RepoPkgTar != "" {
			projectTar, err = os.ReadFile(req.Spec.RepoPkgTar)
			if err != nil {
				return fmt.Errorf("failed to read project archive %q: %w", req.Spec.RepoPkgTar, err)
			}
		} else {
			projectTar, err = autoconf.DefaultProjectTar()
			if err != nil {
				return err
			}
		}
	}

	imageRef, err := container.NewImageBuilder(docker).Build(ctx, compiled, baseImage, projectTar)
	if err != nil {
		return err
	}
	if !cmd.Bool("keep-image") {
		defer removeImages(docker, req.Spec.BaseImage, imageRef, baseImage)
	}

	outputDir := cmd.String("output")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	extractPath := filepath.Join(outputDir, name+"_extract.tar")
	runCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()
	if err := container.NewExtractor(docker).Extract(runCtx, imageRef, script.ExtractCommands(name), compiled.Mounts, extractPath); err != nil {
		return err
	}

	outputs, err := container.Unpack(extractPath, outputDir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(extractPath); err != nil {
		slog.Warn("failed to remove intermediate archive", "error", err, "path", extractPath)
	}

	if req.Spec.TestEnabled() {
		repos := req.Normalized().Spec.ConfigRepos
		if err := container.Verify(outputs.Archive, outputs.Log, repos); err != nil {
			return err
		}
		slog.Info("outputs verified", "name", name, "repos", repos)
	}

	slog.Info("pipeline finished",
		slog.String("name", name),
		slog.String("archive", outputs.Archive),
		slog.String("log", outputs.Log),
	)
	printRunOutputs(outputs)
	return nil
}

// removeImages removes the committed pipeline images, leaving the original
// base image alone. Cleanup runs on its own context so it still happens when
// the pipeline context is already dead.
func removeImages(docker container.APIClient, original string, refs ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaults.CleanupTimeout)
	defer cancel()

	for _, ref := range refs {
		if ref == "" || ref == original {
			continue
		}
		if _, err := docker.ImageRemove(ctx, ref, image.RemoveOptions{Force: true}); err != nil {
			slog.Warn("failed to remove image", "error", err, "image", ref)
			continue
		}
		slog.Debug("image removed", "image", ref)
	}
}

// printRunOutputs prints where the pipeline outputs landed.
func printRunOutputs(outputs *container.Outputs) {
	fmt.Printf("\nToolchain configs generated successfully!\n")
	if outputs.Archive != "" {
		fmt.Printf("Output archive: %s\n", outputs.Archive)
	}
	fmt.Printf("Run log: %s\n", outputs.Log)
	if outputs.Archive != "" {
		fmt.Printf("\nTo inspect the generated external repositories:\n")
		fmt.Printf("  tar -tf %s\n", outputs.Archive)
	}
}
