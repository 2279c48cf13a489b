package container

import (
	"archive/tar"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/script"
)

// Outputs are the host files produced by unpacking an extraction archive.
type Outputs struct {
	// Archive is the path of the toolchain configuration archive, or ""
	// when the run produced none.
	Archive string

	// Log is the path of the run log.
	Log string
}

// Unpack splits an extraction archive into its declared outputs: the run log
// as <name>_log.txt and, when the run produced one, the toolchain
// configuration archive as <name>_autoconf.tar. A missing log fails; a
// missing configuration archive is how a failed build presents and is left
// to the output checks.
func Unpack(archivePath, outputDir, name string) (*Outputs, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "failed to open extraction archive", err, map[string]any{
			"path": archivePath,
		})
	}
	defer f.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output directory", err, map[string]any{
			"dir": outputDir,
		})
	}

	outputs := &Outputs{}

	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read extraction archive", err)
		}
		if header.Typeflag == tar.TypeDir {
			continue
		}

		var dest string
		switch filepath.Base(header.Name) {
		case filepath.Base(script.LogFile):
			dest = filepath.Join(outputDir, script.LogFileName(name))
			outputs.Log = dest
		case filepath.Base(script.OutputTar):
			dest = filepath.Join(outputDir, script.OutputArchiveName(name))
			outputs.Archive = dest
		default:
			slog.Debug("skipping unexpected archive entry", "entry", header.Name)
			continue
		}

		if err := writeEntry(dest, tr); err != nil {
			return nil, err
		}
	}

	if outputs.Log == "" {
		return nil, errors.Newf(errors.ErrCodeNotFound, "extraction archive %s carries no run log", archivePath)
	}

	slog.Info("extraction archive unpacked", "log", outputs.Log, "archive", outputs.Archive)
	return outputs, nil
}

func writeEntry(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create output file", err, map[string]any{
			"path": dest,
		})
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write output file", err, map[string]any{
			"path": dest,
		})
	}
	return out.Close()
}
