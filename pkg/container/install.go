package container

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// aptSourcesFile is where additional apt repositories are registered inside
// the dependencies image.
const aptSourcesFile = "/etc/apt/sources.list.d/autoconfig.list"

// RenderInstallPlan renders the command list that installs extra Debian
// packages into a base image: register additional repositories, trust their
// keys, refresh the index, install. Ordering follows the input so the plan
// is deterministic.
func RenderInstallPlan(packages, repos, keys []string) []string {
	cmds := make([]string, 0, len(repos)+len(keys)+2)
	for _, repo := range repos {
		cmds = append(cmds, fmt.Sprintf("echo %q >> %s", repo, aptSourcesFile))
	}
	for _, key := range keys {
		cmds = append(cmds, fmt.Sprintf("curl -fsSL %q | apt-key add -", key))
	}
	cmds = append(cmds, "apt-get update")
	cmds = append(cmds, "apt-get install -y "+strings.Join(packages, " "))
	return cmds
}

// PackageInstaller bakes requested Debian packages into a base image before
// the autoconfig run.
type PackageInstaller struct {
	cli APIClient
}

// NewPackageInstaller creates a PackageInstaller on a Docker client.
func NewPackageInstaller(cli APIClient) *PackageInstaller {
	return &PackageInstaller{cli: cli}
}

// Install runs the request's package install plan in a container from the
// base image and commits the result as bazel-autoconfig/<name>-deps. The
// returned reference replaces the base image for the rest of the pipeline.
// Requests without packages return the base image unchanged.
func (p *PackageInstaller) Install(ctx context.Context, req *autoconf.Request) (string, error) {
	start := time.Now()

	if req == nil {
		return "", errors.New(errors.ErrCodeInvalidRequest, "request is nil")
	}
	if len(req.Spec.Packages) == 0 {
		slog.Debug("no packages requested, keeping base image", "base", req.Spec.BaseImage)
		return req.Spec.BaseImage, nil
	}

	named, err := reference.ParseNormalizedNamed(req.Spec.BaseImage)
	if err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid base image reference", err, map[string]any{
			"baseImage": req.Spec.BaseImage,
		})
	}
	base := reference.TagNameOnly(named).String()

	plan := RenderInstallPlan(req.Spec.Packages, req.Spec.AdditionalRepos, req.Spec.Keys)
	slog.Info("installing packages into base image",
		"base", base,
		"packages", len(req.Spec.Packages),
		"repos", len(req.Spec.AdditionalRepos))

	if err := pullImage(ctx, p.cli, base); err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	resp, err := p.cli.ContainerCreate(ctx, &container.Config{
		Image: base,
		Cmd:   []string{"/bin/sh", "-c", strings.Join(plan, " && ")},
	}, nil, nil, nil, "")
	if err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to create package install container", err)
	}
	containerID := resp.ID
	defer stopAndRemove(p.cli, containerID)

	if err := p.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrCodeInternal, "failed to start package install container", err)
	}

	if err := waitForRun(ctx, p.cli, containerID); err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrCodeInternal, "package install run failed", err)
	}

	ref := ImageRef(req.Name()) + "-deps"
	if _, err := p.cli.ContainerCommit(ctx, containerID, container.CommitOptions{
		Reference: ref,
		Comment:   "bazel autoconfig dependencies image",
	}); err != nil {
		packageInstallsTotal.WithLabelValues("error").Inc()
		return "", errors.WrapWithContext(errors.ErrCodeInternal, "failed to commit dependencies image", err, map[string]any{
			"reference": ref,
		})
	}

	packageInstallsTotal.WithLabelValues("success").Inc()
	packageInstallDuration.Observe(time.Since(start).Seconds())

	slog.Info("dependencies image built", "reference", ref)
	return ref, nil
}
