package container

import (
	"archive/tar"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// Verify checks an extraction's outputs on the host: every configured
// repository must be present in the toolchain configuration archive and the
// run log must be non-empty. This is the in-process form of the compiled
// output checks.
func Verify(archivePath, logPath string, repos []string) error {
	present, err := archiveRepos(archivePath)
	if err != nil {
		verificationsTotal.WithLabelValues("error").Inc()
		return err
	}

	for _, repo := range repos {
		if !present[repo] {
			verificationsTotal.WithLabelValues("failed").Inc()
			return errors.Newf(errors.ErrCodeInternal,
				"output archive %s is missing repository %s", archivePath, repo)
		}
	}

	info, err := os.Stat(logPath)
	if err != nil {
		verificationsTotal.WithLabelValues("error").Inc()
		return errors.WrapWithContext(errors.ErrCodeNotFound, "run log not found", err, map[string]any{
			"path": logPath,
		})
	}
	if info.Size() == 0 {
		verificationsTotal.WithLabelValues("failed").Inc()
		return errors.Newf(errors.ErrCodeInternal, "run log %s is empty", logPath)
	}

	verificationsTotal.WithLabelValues("success").Inc()
	slog.Info("outputs verified", "archive", archivePath, "repos", repos)
	return nil
}

// archiveRepos returns the set of top-level directory names in the archive.
// Entries are "./<repo>/..." because the archive is created with -C.
func archiveRepos(archivePath string) (map[string]bool, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "output archive not found", err, map[string]any{
			"path": archivePath,
		})
	}
	defer f.Close()

	repos := make(map[string]bool)

	tr := tar.NewReader(f)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read output archive", err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		name = strings.TrimSuffix(name, "/")
		if name == "" {
			continue
		}
		if top, _, found := strings.Cut(name, "/"); found {
			repos[top] = true
		} else {
			repos[name] = true
		}
	}

	return repos, nil
}
