package container

import (
	"archive/tar"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/nlopezgi/bazel-toolchains/pkg/defaults"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

// Extractor runs autoconfig images and collects their output archive.
type Extractor struct {
	cli APIClient
}

// NewExtractor creates an Extractor on a Docker client.
func NewExtractor(cli APIClient) *Extractor {
	return &Extractor{cli: cli}
}

// Extract runs the command list in a container from imageRef with the given
// bind mounts, waits for it to finish, and copies the extraction archive to
// outputPath on the host. Container logs are streamed into slog while the
// run is in flight.
func (e *Extractor) Extract(ctx context.Context, imageRef string, commands []string, mounts []script.MountSpec, outputPath string) error {
	start := time.Now()

	if len(commands) == 0 {
		extractionsTotal.WithLabelValues("error").Inc()
		return errors.New(errors.ErrCodeInvalidRequest, "no commands to run")
	}

	resp, err := e.cli.ContainerCreate(ctx, &container.Config{
		Image:      imageRef,
		Cmd:        []string{"/bin/sh", "-c", strings.Join(commands, " && ")},
		WorkingDir: script.ConfigDir,
	}, &container.HostConfig{
		Mounts: bindMounts(mounts),
	}, nil, nil, "")
	if err != nil {
		extractionsTotal.WithLabelValues("error").Inc()
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create extraction container", err, map[string]any{
			"image": imageRef,
		})
	}
	containerID := resp.ID
	defer stopAndRemove(e.cli, containerID)

	if err := e.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		extractionsTotal.WithLabelValues("error").Inc()
		return errors.Wrap(errors.ErrCodeInternal, "failed to start extraction container", err)
	}

	slog.Info("extraction container running", "image", imageRef, "container", containerID)

	if err := waitForRun(ctx, e.cli, containerID); err != nil {
		extractionsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := e.copyOut(ctx, containerID, outputPath); err != nil {
		extractionsTotal.WithLabelValues("error").Inc()
		return err
	}

	extractionsTotal.WithLabelValues("success").Inc()
	extractionDuration.Observe(time.Since(start).Seconds())

	slog.Info("extraction complete", "output", outputPath)
	return nil
}

// waitForRun streams a started container's logs into slog and blocks until
// it stops, returning an error when it exits non-zero.
func waitForRun(ctx context.Context, cli APIClient, containerID string) error {
	logDone := streamLogs(ctx, cli, containerID)

	waitCh, errCh := cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case result := <-waitCh:
		<-logDone
		if result.StatusCode != 0 {
			return errors.Newf(errors.ErrCodeInternal, "container run exited with code %d", result.StatusCode)
		}
		return nil
	case err := <-errCh:
		<-logDone
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeInternal, "failed waiting for container", err)
	case <-ctx.Done():
		<-logDone
		return ctx.Err()
	}
}

// streamLogs follows the container's output into slog until the stream
// closes. The returned channel closes when draining is done.
func streamLogs(ctx context.Context, cli APIClient, containerID string) <-chan struct{} {
	done := make(chan struct{})

	logs, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		slog.Warn("failed to attach container logs", "container", containerID, "error", err)
		close(done)
		return done
	}

	go func() {
		defer close(done)
		defer logs.Close()
		stdout := &logWriter{level: slog.LevelDebug, stream: "stdout"}
		stderr := &logWriter{level: slog.LevelDebug, stream: "stderr"}
		if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil && ctx.Err() == nil {
			slog.Warn("container log stream ended", "container", containerID, "error", err)
		}
	}()

	return done
}

// copyOut copies the extraction archive out of the container. The Docker
// copy endpoint wraps the file in a tar stream, so the single entry is
// unwrapped here.
func (e *Extractor) copyOut(ctx context.Context, containerID, outputPath string) error {
	rc, _, err := e.cli.CopyFromContainer(ctx, containerID, script.ExtractTar)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to copy extraction archive from container", err, map[string]any{
			"path": script.ExtractTar,
		})
	}
	defer rc.Close()

	wantName := filepath.Base(script.ExtractTar)
	tr := tar.NewReader(rc)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to read copy stream", err)
		}
		if filepath.Base(header.Name) != wantName || header.Typeflag == tar.TypeDir {
			continue
		}

		out, err := os.Create(outputPath)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output archive", err, map[string]any{
				"path": outputPath,
			})
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return errors.Wrap(errors.ErrCodeInternal, "failed to write output archive", err)
		}
		return out.Close()
	}

	return errors.Newf(errors.ErrCodeNotFound, "extraction archive %s not found in container", script.ExtractTar)
}

// stopAndRemove stops and removes a container on a background context so
// cleanup runs even when the caller's context is already cancelled.
func stopAndRemove(cli APIClient, containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaults.CleanupTimeout)
	defer cancel()

	timeout := int(defaults.CleanupTimeout.Seconds())
	if err := cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		slog.Debug("failed to stop container", "container", containerID, "error", err)
	}
	if err := cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		slog.Warn("failed to remove container", "container", containerID, "error", err)
	}
}

func bindMounts(specs []script.MountSpec) []mount.Mount {
	if len(specs) == 0 {
		return nil
	}
	mounts := make([]mount.Mount, 0, len(specs))
	for _, spec := range specs {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   spec.Source,
			Target:   spec.Target,
			ReadOnly: spec.ReadOnly,
		})
	}
	return mounts
}

// logWriter forwards container output lines to slog.
type logWriter struct {
	level  slog.Level
	stream string
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		slog.Log(context.Background(), w.level, line, "stream", w.stream)
	}
	return len(p), nil
}
