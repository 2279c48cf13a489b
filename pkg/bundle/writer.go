package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/header"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

// KindBundleManifest is the resource kind of a bundle manifest document.
const KindBundleManifest = "AutoconfigBundle"

// File names written into a bundle directory next to the compiled script.
const (
	MountsFileName    = "mounts.yaml"
	ChecksFileName    = "checks.sh"
	ManifestFileName  = "manifest.yaml"
	ChecksumsFileName = "checksums.txt"
)

const executableMode = 0o755

// Manifest describes the contents of a written bundle.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	// Script is the file name of the compiled script in the bundle.
	Script string `json:"script" yaml:"script"`

	// Checks is the file name of the output checks script, if any.
	Checks string `json:"checks,omitempty" yaml:"checks,omitempty"`

	// Mounts is the file name of the mount declarations, if any.
	Mounts string `json:"mounts,omitempty" yaml:"mounts,omitempty"`

	// Commands is the number of commands in the compiled script.
	Commands int `json:"commands" yaml:"commands"`

	// Stages summarizes the pipeline the script was compiled from.
	Stages []script.StageSummary `json:"stages" yaml:"stages"`
}

type mountsDocument struct {
	Mounts []script.MountSpec `json:"mounts" yaml:"mounts"`
}

// Writer writes compiled scripts to bundle directories.
type Writer struct {
	checksums bool
	manifest  bool
	version   string
}

// Option is a functional option for configuring a Writer.
type Option func(*Writer)

// WithChecksums toggles writing a checksums file into the bundle.
func WithChecksums(enabled bool) Option {
	return func(w *Writer) {
		w.checksums = enabled
	}
}

// WithManifest toggles writing a manifest document into the bundle.
func WithManifest(enabled bool) Option {
	return func(w *Writer) {
		w.manifest = enabled
	}
}

// WithVersion records the bundler version in manifest metadata.
func WithVersion(version string) Option {
	return func(w *Writer) {
		w.version = version
	}
}

// NewWriter creates a Writer. Checksums and manifests are written unless
// disabled through options.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		checksums: true,
		manifest:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write lays a compiled script out as a bundle directory: the rendered
// script, the mount declarations and output checks it carries, and the
// manifest and checksums files unless disabled. It returns a Result listing
// every written file.
func (w *Writer) Write(ctx context.Context, compiled *script.CompiledScript, dir string) (*Result, error) {
	start := time.Now()

	if compiled == nil {
		bundleWritesTotal.WithLabelValues("error").Inc()
		return nil, errors.New(errors.ErrCodeInvalidRequest, "cannot write bundle for nil compiled script")
	}

	name := compiled.Name()
	if name == "" {
		bundleWritesTotal.WithLabelValues("error").Inc()
		return nil, errors.New(errors.ErrCodeInvalidRequest, "compiled script has no name")
	}

	if err := ctx.Err(); err != nil {
		bundleWritesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		bundleWritesTotal.WithLabelValues("error").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to create bundle directory", err, map[string]any{
			"dir": dir,
		})
	}

	result := NewResult(name)
	result.OutputDir = dir

	if err := w.writeFile(result, dir, script.ScriptName(name), []byte(compiled.Script()), executableMode); err != nil {
		bundleWritesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(compiled.Mounts) > 0 {
		data, err := yaml.Marshal(mountsDocument{Mounts: compiled.Mounts})
		if err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to marshal mount declarations", err)
		}
		if err := w.writeFile(result, dir, MountsFileName, data, 0o644); err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if len(compiled.Checks) > 0 {
		if err := w.writeFile(result, dir, ChecksFileName, renderChecks(compiled.Checks), executableMode); err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if w.manifest {
		data, err := w.renderManifest(compiled, name)
		if err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if err := w.writeFile(result, dir, ManifestFileName, data, 0o644); err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if w.checksums {
		data, err := renderChecksums(result)
		if err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if err := w.writeFile(result, dir, ChecksumsFileName, data, 0o644); err != nil {
			bundleWritesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	result.MarkSuccess()

	bundleWritesTotal.WithLabelValues("success").Inc()
	bundleWriteDuration.Observe(time.Since(start).Seconds())
	bundleBytesWritten.Add(float64(result.Size))

	slog.Info("bundle written",
		"name", name,
		"dir", dir,
		"files", len(result.Files),
		"size", result.Size)

	return result, nil
}

// writeFile writes one bundle file and records it on the result.
func (w *Writer) writeFile(result *Result, dir, name string, content []byte, mode os.FileMode) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, mode); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write bundle file", err, map[string]any{
			"path": path,
		})
	}

	result.AddFile(name, int64(len(content)))
	slog.Debug("file written", "path", path, "size", len(content))

	return nil
}

func (w *Writer) renderManifest(compiled *script.CompiledScript, name string) ([]byte, error) {
	manifest := Manifest{
		Script:   script.ScriptName(name),
		Commands: len(compiled.Commands),
		Stages:   compiled.Stages,
	}
	manifest.Set(KindBundleManifest)
	manifest.SetName(name)
	if w.version != "" {
		manifest.Metadata["bundler-version"] = w.version
	}

	if len(compiled.Checks) > 0 {
		manifest.Checks = ChecksFileName
	}
	if len(compiled.Mounts) > 0 {
		manifest.Mounts = MountsFileName
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to marshal bundle manifest", err)
	}

	return data, nil
}

// renderChecks renders output checks as a standalone script. Unlike the
// compiled script, checks run with set -e so the first failing check stops
// the run.
func renderChecks(checks []string) []byte {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash\nset -e\n")
	for _, check := range checks {
		sb.WriteString(check)
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

// renderChecksums computes SHA-256 checksums for every file written so far.
// The checksums file itself is written after this runs, so it never lists
// its own checksum.
func renderChecksums(result *Result) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s Bundle Checksums (SHA256)\n", result.Name))
	sb.WriteString(fmt.Sprintf("# Generated: %s\n\n", result.GeneratedAt()))

	for _, name := range result.Files {
		path := filepath.Join(result.OutputDir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read bundle file for checksum", err, map[string]any{
				"path": path,
			})
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", ComputeChecksum(content), name))
	}

	return []byte(sb.String()), nil
}
