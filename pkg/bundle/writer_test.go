package bundle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

// compileRequest compiles a minimal valid request for bundle tests. The
// mounted project gives the compiled script a mount declaration and checks
// stay enabled by default.
func compileRequest(t *testing.T) *script.CompiledScript {
	t.Helper()

	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage:    "gcr.io/test/base:latest",
			BazelVersion: "6.0.0",
			MountProject: "/src/project",
		},
	}
	req.SetName("debian-test")

	compiled, err := script.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return compiled
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	result, err := NewWriter().Write(context.Background(), compiled, dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !result.Success {
		t.Error("result should be marked successful")
	}

	if result.OutputDir != dir {
		t.Errorf("OutputDir = %s, want %s", result.OutputDir, dir)
	}

	wantFiles := []string{
		"debian-test.sh",
		MountsFileName,
		ChecksFileName,
		ManifestFileName,
		ChecksumsFileName,
	}
	if len(result.Files) != len(wantFiles) {
		t.Fatalf("len(Files) = %d, want %d: %v", len(result.Files), len(wantFiles), result.Files)
	}
	for i, want := range wantFiles {
		if result.Files[i] != want {
			t.Errorf("Files[%d] = %s, want %s", i, result.Files[i], want)
		}
	}

	if result.Size <= 0 {
		t.Errorf("Size = %d, want > 0", result.Size)
	}

	content, err := os.ReadFile(filepath.Join(dir, "debian-test.sh"))
	if err != nil {
		t.Fatalf("reading script: %v", err)
	}
	if string(content) != compiled.Script() {
		t.Error("written script does not match compiled.Script()")
	}
}

func TestWriter_WriteScriptIsExecutable(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	if _, err := NewWriter().Write(context.Background(), compiled, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for _, name := range []string{"debian-test.sh", ChecksFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			t.Errorf("%s should be executable, mode = %v", name, info.Mode())
		}
	}
}

func TestWriter_WriteMounts(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	if _, err := NewWriter().Write(context.Background(), compiled, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, MountsFileName))
	if err != nil {
		t.Fatalf("reading mounts: %v", err)
	}

	var doc mountsDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		t.Fatalf("unmarshaling mounts: %v", err)
	}

	if len(doc.Mounts) != 1 {
		t.Fatalf("len(Mounts) = %d, want 1", len(doc.Mounts))
	}

	mount := doc.Mounts[0]
	if mount.Source != "/src/project" {
		t.Errorf("Source = %s, want /src/project", mount.Source)
	}
	if mount.Target != script.ProjectDir {
		t.Errorf("Target = %s, want %s", mount.Target, script.ProjectDir)
	}
	if !mount.ReadOnly {
		t.Error("project mount should be read-only")
	}
}

func TestWriter_WriteChecks(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	if _, err := NewWriter().Write(context.Background(), compiled, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, ChecksFileName))
	if err != nil {
		t.Fatalf("reading checks: %v", err)
	}

	text := string(content)
	if !strings.HasPrefix(text, "#!/bin/bash\nset -e\n") {
		t.Errorf("checks script missing shebang and set -e:\n%s", text)
	}

	for _, check := range compiled.Checks {
		if !strings.Contains(text, check) {
			t.Errorf("checks script missing %q", check)
		}
	}
}

func TestWriter_WriteManifest(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	if _, err := NewWriter(WithVersion("1.2.3")).Write(context.Background(), compiled, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		t.Fatalf("unmarshaling manifest: %v", err)
	}

	if manifest.Kind != KindBundleManifest {
		t.Errorf("Kind = %s, want %s", manifest.Kind, KindBundleManifest)
	}
	if manifest.Name() != "debian-test" {
		t.Errorf("Name() = %s, want debian-test", manifest.Name())
	}
	if manifest.Script != "debian-test.sh" {
		t.Errorf("Script = %s, want debian-test.sh", manifest.Script)
	}
	if manifest.Checks != ChecksFileName {
		t.Errorf("Checks = %s, want %s", manifest.Checks, ChecksFileName)
	}
	if manifest.Mounts != MountsFileName {
		t.Errorf("Mounts = %s, want %s", manifest.Mounts, MountsFileName)
	}
	if manifest.Commands != len(compiled.Commands) {
		t.Errorf("Commands = %d, want %d", manifest.Commands, len(compiled.Commands))
	}
	if len(manifest.Stages) != len(compiled.Stages) {
		t.Errorf("len(Stages) = %d, want %d", len(manifest.Stages), len(compiled.Stages))
	}
	if manifest.Metadata["bundler-version"] != "1.2.3" {
		t.Errorf("bundler-version = %s, want 1.2.3", manifest.Metadata["bundler-version"])
	}
}

func TestWriter_WriteChecksums(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	result, err := NewWriter().Write(context.Background(), compiled, dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, ChecksumsFileName))
	if err != nil {
		t.Fatalf("reading checksums: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# debian-test Bundle Checksums (SHA256)") {
		t.Errorf("checksums missing header:\n%s", text)
	}

	if strings.Contains(text, ChecksumsFileName) {
		t.Error("checksums file should not list itself")
	}

	// Every other written file is listed with its actual checksum.
	for _, name := range result.Files {
		if name == ChecksumsFileName {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		line := ComputeChecksum(data) + "  " + name
		if !strings.Contains(text, line) {
			t.Errorf("checksums missing line %q", line)
		}
	}
}

func TestWriter_WriteWithoutOptionalFiles(t *testing.T) {
	dir := t.TempDir()

	// No mount, checks disabled: only the script itself gets written.
	disabled := false
	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage:    "gcr.io/test/base:latest",
			BazelVersion: "6.0.0",
			Test:         &disabled,
		},
	}
	req.SetName("debian-test")

	compiled, err := script.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	writer := NewWriter(WithChecksums(false), WithManifest(false))
	result, err := writer.Write(context.Background(), compiled, dir)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(result.Files) != 1 || result.Files[0] != "debian-test.sh" {
		t.Errorf("Files = %v, want [debian-test.sh]", result.Files)
	}

	for _, name := range []string{MountsFileName, ChecksFileName, ManifestFileName, ChecksumsFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist", name)
		}
	}
}

func TestWriter_WriteInvalidInput(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		compiled *script.CompiledScript
	}{
		{"nil compiled script", nil},
		{"unnamed compiled script", &script.CompiledScript{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWriter().Write(context.Background(), tt.compiled, dir)
			if err == nil {
				t.Fatal("Write() expected error")
			}
			if code := errors.CodeOf(err); code != errors.ErrCodeInvalidRequest {
				t.Errorf("CodeOf() = %s, want %s", code, errors.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestWriter_WriteCancelledContext(t *testing.T) {
	dir := t.TempDir()
	compiled := compileRequest(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewWriter().Write(ctx, compiled, dir); err == nil {
		t.Fatal("Write() expected error for cancelled context")
	}
}
