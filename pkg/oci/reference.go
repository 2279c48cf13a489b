package oci

import (
	"strings"

	"github.com/distribution/reference"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// ValidateRegistryReference checks that a push reference is well-formed and
// names its registry host explicitly. Hostless references would silently
// normalize to Docker Hub, which is never where autoconfig artifacts belong.
func ValidateRegistryReference(ref string) error {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid registry reference", err, map[string]any{
			"reference": ref,
		})
	}

	if reference.Domain(named) == "docker.io" && !strings.HasPrefix(ref, "docker.io/") {
		return errors.Newf(errors.ErrCodeInvalidRequest,
			"registry reference %q has no registry host", ref)
	}

	return nil
}

// BuildReference joins registry, repository, and tag into a push reference.
// An empty tag defaults to latest.
func BuildReference(registry, repository, tag string) string {
	if tag == "" {
		tag = "latest"
	}
	return registry + "/" + repository + ":" + tag
}
