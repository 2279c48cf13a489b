package autoconf

import (
	"archive/tar"
	"bytes"
	_ "embed"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

//go:embed data/BUILD.sample
var defaultProjectBuild []byte

// DefaultProjectTar packages the built-in sample project as a tar archive
// ready to stage into the image. Headers carry no timestamps so the bytes
// are the same on every call, which keeps image builds reproducible.
func DefaultProjectTar() ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	hdr := &tar.Header{
		Name: "BUILD.sample",
		Mode: 0o644,
		Size: int64(len(defaultProjectBuild)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write default project header", err)
	}
	if _, err := tw.Write(defaultProjectBuild); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write default project content", err)
	}
	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to finalize default project archive", err)
	}
	return buf.Bytes(), nil
}
