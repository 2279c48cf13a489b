package container

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

func stagedCompiled(t *testing.T) *script.CompiledScript {
	t.Helper()

	req := &autoconf.Request{
		Spec: autoconf.Spec{
			BaseImage:    "gcr.io/test/base:latest",
			BazelVersion: "6.0.0",
		},
	}
	req.SetName("debian-test")

	compiled, err := script.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return compiled
}

func TestStageArchive(t *testing.T) {
	compiled := stagedCompiled(t)

	archive, err := StageArchive(compiled, []byte("project bytes"))
	if err != nil {
		t.Fatalf("StageArchive() error = %v", err)
	}

	wantOrder := []string{
		"bazel-config/",
		"bazel-config/debian-test.sh",
		"bazel-config/install_bazel_head.sh",
		"bazel-config/install_bazel_version.sh",
		"bazel-config/install_bazel_source.sh",
		"bazel-config/project_src.tar",
	}

	var gotOrder []string
	tr := tar.NewReader(bytes.NewReader(archive))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		gotOrder = append(gotOrder, header.Name)

		switch header.Name {
		case "bazel-config/debian-test.sh":
			content, _ := io.ReadAll(tr)
			if string(content) != compiled.Script() {
				t.Error("staged script does not match compiled.Script()")
			}
			if header.Mode != 0o755 {
				t.Errorf("script mode = %o, want 755", header.Mode)
			}
		case "bazel-config/project_src.tar":
			if header.Mode != 0o644 {
				t.Errorf("project tar mode = %o, want 644", header.Mode)
			}
		}
	}

	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("entries = %v, want %v", gotOrder, wantOrder)
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("entry[%d] = %s, want %s", i, gotOrder[i], wantOrder[i])
		}
	}
}

func TestStageArchiveWithoutProject(t *testing.T) {
	compiled := stagedCompiled(t)

	archive, err := StageArchive(compiled, nil)
	if err != nil {
		t.Fatalf("StageArchive() error = %v", err)
	}

	tr := tar.NewReader(bytes.NewReader(archive))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		if header.Name == "bazel-config/project_src.tar" {
			t.Error("project tar staged for request without one")
		}
	}
}

func TestStageArchiveDeterministic(t *testing.T) {
	compiled := stagedCompiled(t)

	first, err := StageArchive(compiled, []byte("project"))
	if err != nil {
		t.Fatalf("StageArchive() error = %v", err)
	}
	second, err := StageArchive(compiled, []byte("project"))
	if err != nil {
		t.Fatalf("StageArchive() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different archives")
	}
}

func TestStageArchiveNilCompiled(t *testing.T) {
	_, err := StageArchive(nil, nil)
	if err == nil {
		t.Fatal("StageArchive() expected error")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeInvalidRequest {
		t.Errorf("CodeOf() = %s, want %s", code, errors.ErrCodeInvalidRequest)
	}
}
