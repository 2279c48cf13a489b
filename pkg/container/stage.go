package container

import (
	"archive/tar"
	"bytes"
	"embed"
	"strings"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

//go:embed scripts
var helperScripts embed.FS

// stageDir is the archive-relative name of the config directory. The staged
// archive is copied to the container root, so entries under it land in
// script.ConfigDir.
var stageDir = strings.TrimPrefix(script.ConfigDir, "/")

// StageArchive builds the tar stream staged into an autoconfig image: the
// compiled script, the three Bazel installer helpers, and optionally the
// project archive as project_src.tar. Headers carry no timestamps, so
// identical inputs produce identical archives.
func StageArchive(compiled *script.CompiledScript, projectTar []byte) ([]byte, error) {
	if compiled == nil || compiled.Name() == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "cannot stage an unnamed compiled script")
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     stageDir + "/",
		Mode:     0o755,
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to stage config directory", err)
	}

	if err := stageFile(tw, script.ScriptName(compiled.Name()), []byte(compiled.Script()), 0o755); err != nil {
		return nil, err
	}

	for _, helper := range []string{
		script.InstallHeadScript,
		script.InstallVersionScript,
		script.InstallSourceScript,
	} {
		content, err := helperScripts.ReadFile("scripts/" + helper)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInternal, "missing embedded installer script", err, map[string]any{
				"script": helper,
			})
		}
		if err := stageFile(tw, helper, content, 0o755); err != nil {
			return nil, err
		}
	}

	if len(projectTar) > 0 {
		if err := stageFile(tw, "project_src.tar", projectTar, 0o644); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to finalize staging archive", err)
	}

	return buf.Bytes(), nil
}

func stageFile(tw *tar.Writer, name string, content []byte, mode int64) error {
	header := &tar.Header{
		Name: stageDir + "/" + name,
		Mode: mode,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to stage file", err, map[string]any{
			"file": name,
		})
	}
	if _, err := tw.Write(content); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to stage file", err, map[string]any{
			"file": name,
		})
	}
	return nil
}
