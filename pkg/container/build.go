package container

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"

	"github.com/nlopezgi/bazel-toolchains/pkg/defaults"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

// ImageRepository is the local repository committed autoconfig images are
// tagged under.
const ImageRepository = "bazel-autoconfig"

// ImageRef returns the image reference an autoconfig image is committed as.
func ImageRef(name string) string {
	return ImageRepository + "/" + name
}

// ImageBuilder bakes compiled scripts into container images.
type ImageBuilder struct {
	cli APIClient
}

// NewImageBuilder creates an ImageBuilder on a Docker client.
func NewImageBuilder(cli APIClient) *ImageBuilder {
	return &ImageBuilder{cli: cli}
}

// Build produces the autoconfig image for a compiled script: pull the base
// image, stage the script and its helpers into a container created from it,
// and commit the result as bazel-autoconfig/<name>. The returned reference
// points at the committed image.
func (b *ImageBuilder) Build(ctx context.Context, compiled *script.CompiledScript, baseImage string, projectTar []byte) (string, error) {
	start := time.Now()

	if compiled == nil || compiled.Name() == "" {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", errors.New(errors.ErrCodeInvalidRequest, "cannot build image for unnamed compiled script")
	}

	named, err := reference.ParseNormalizedNamed(baseImage)
	if err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid base image reference", err, map[string]any{
			"baseImage": baseImage,
		})
	}
	base := reference.TagNameOnly(named).String()

	name := compiled.Name()
	slog.Info("building autoconfig image", "name", name, "base", base)

	if err := pullImage(ctx, b.cli, base); err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	archive, err := StageArchive(compiled, projectTar)
	if err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	buildCtx, cancel := context.WithTimeout(ctx, defaults.BuildTimeout)
	defer cancel()

	resp, err := b.cli.ContainerCreate(buildCtx, &container.Config{
		Image:      base,
		Cmd:        []string{"/bin/sh"},
		WorkingDir: script.ConfigDir,
	}, nil, nil, nil, "")
	if err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to create staging container", err)
	}
	containerID := resp.ID
	defer b.removeContainer(containerID)

	if err := b.cli.CopyToContainer(buildCtx, containerID, "/", bytes.NewReader(archive), container.CopyToContainerOptions{}); err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to stage files into container", err)
	}

	ref := ImageRef(name)
	if _, err := b.cli.ContainerCommit(buildCtx, containerID, container.CommitOptions{
		Reference: ref,
		Comment:   "bazel autoconfig image",
	}); err != nil {
		imageBuildsTotal.WithLabelValues("error").Inc()
		return "", errors.WrapWithContext(errors.ErrCodeInternal, "failed to commit autoconfig image", err, map[string]any{
			"reference": ref,
		})
	}

	imageBuildsTotal.WithLabelValues("success").Inc()
	imageBuildDuration.Observe(time.Since(start).Seconds())

	slog.Info("autoconfig image built", "name", name, "reference", ref)
	return ref, nil
}

// pullImage pulls an image and drains the progress stream. The pull is not
// complete until the response body is fully read.
func pullImage(ctx context.Context, cli APIClient, ref string) error {
	pullCtx, cancel := context.WithTimeout(ctx, defaults.PullTimeout)
	defer cancel()

	slog.Debug("pulling image", "reference", ref)

	rc, err := cli.ImagePull(pullCtx, ref, image.PullOptions{})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to pull base image", err, map[string]any{
			"reference": ref,
		})
	}
	defer rc.Close()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to read image pull response", err, map[string]any{
			"reference": ref,
		})
	}

	return nil
}

// removeContainer force-removes a container on a background context so
// cleanup runs even when the caller's context is already cancelled.
func (b *ImageBuilder) removeContainer(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaults.CleanupTimeout)
	defer cancel()

	if err := b.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		slog.Warn("failed to remove staging container", "container", containerID, "error", err)
	}
}
