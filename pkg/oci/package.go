package oci

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	orasoci "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/errdef"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// ArtifactType identifies autoconfig bundles in OCI manifests.
const ArtifactType = "application/vnd.bazel-toolchains.autoconfig.v1"

// MediaTypeBundleFile is the layer media type of each bundle file.
const MediaTypeBundleFile = "application/vnd.bazel-toolchains.autoconfig.file.v1"

// AnnotationRequestName carries the request name on the artifact manifest.
const AnnotationRequestName = "build.bazel.autoconfig.request-name"

// PackageOptions configure packaging a bundle directory into an OCI layout
// store.
type PackageOptions struct {
	// SourceDir is the bundle directory to package.
	SourceDir string

	// StoreDir is the OCI layout directory to package into. Created if
	// missing.
	StoreDir string

	// Reference is the registry reference the artifact is tagged as.
	Reference string

	// Name is the request name, recorded as a manifest annotation.
	Name string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	// Reference the artifact was tagged as.
	Reference string

	// Digest of the artifact manifest.
	Digest string

	// StorePath is the OCI layout directory holding the artifact.
	StorePath string

	// Files is the number of bundle files packaged as layers.
	Files int
}

// Package packages every file of a bundle directory as one layer of an OCI
// artifact in a local OCI layout store and tags it with the registry
// reference. Layers are ordered by file name, so packaging is deterministic
// for a given bundle.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	start := time.Now()

	store, err := orasoci.New(opts.StoreDir)
	if err != nil {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open OCI layout store", err, map[string]any{
			"dir": opts.StoreDir,
		})
	}

	dirEntries, err := os.ReadDir(opts.SourceDir)
	if err != nil {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to read bundle directory", err, map[string]any{
			"dir": opts.SourceDir,
		})
	}

	var layers []ocispec.Descriptor
	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(opts.SourceDir, entry.Name()))
		if err != nil {
			packagesTotal.WithLabelValues("error").Inc()
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read bundle file", err, map[string]any{
				"file": entry.Name(),
			})
		}

		desc := content.NewDescriptorFromBytes(MediaTypeBundleFile, data)
		desc.Annotations = map[string]string{
			ocispec.AnnotationTitle: entry.Name(),
		}

		if err := store.Push(ctx, desc, bytes.NewReader(data)); err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
			packagesTotal.WithLabelValues("error").Inc()
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to push bundle layer", err, map[string]any{
				"file": entry.Name(),
			})
		}

		layers = append(layers, desc)
		slog.Debug("bundle file packaged", "file", entry.Name(), "digest", desc.Digest.String())
	}

	if len(layers) == 0 {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, errors.Newf(errors.ErrCodeInvalidRequest, "bundle directory %s holds no files", opts.SourceDir)
	}

	annotations := map[string]string{}
	if opts.Name != "" {
		annotations[AnnotationRequestName] = opts.Name
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers:              layers,
		ManifestAnnotations: annotations,
	})
	if err != nil {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack artifact manifest", err)
	}

	if err := store.Tag(ctx, manifestDesc, opts.Reference); err != nil {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to tag artifact", err, map[string]any{
			"reference": opts.Reference,
		})
	}

	packagesTotal.WithLabelValues("success").Inc()
	packageDuration.Observe(time.Since(start).Seconds())

	slog.Info("bundle packaged",
		"reference", opts.Reference,
		"digest", manifestDesc.Digest.String(),
		"layers", len(layers))

	return &PackageResult{
		Reference: opts.Reference,
		Digest:    manifestDesc.Digest.String(),
		StorePath: opts.StoreDir,
		Files:     len(layers),
	}, nil
}
