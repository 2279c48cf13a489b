package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
)

const (
	// DefaultAPIVersion is served when a request does not negotiate one.
	DefaultAPIVersion = "v1"

	// vendorMediaPrefix is the Accept media type prefix used to negotiate
	// an API version, as in "application/vnd.bazel-toolchains.v1+json".
	vendorMediaPrefix = "application/vnd.bazel-toolchains."
)

var supportedAPIVersions = map[string]bool{
	"v1": true,
}

// VersionResponse describes the running server build.
type VersionResponse struct {
	Name        string    `json:"name" yaml:"name"`
	Version     string    `json:"version" yaml:"version"`
	Commit      string    `json:"commit" yaml:"commit"`
	Date        string    `json:"date" yaml:"date"`
	APIVersions []string  `json:"apiVersions" yaml:"apiVersions"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// negotiateAPIVersion picks the API version from the Accept header. Anything
// other than a supported vendor media type falls back to the default.
func negotiateAPIVersion(r *http.Request) string {
	accept := r.Header.Get("Accept")
	for _, part := range strings.Split(accept, ",") {
		mediaType := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if !strings.HasPrefix(mediaType, vendorMediaPrefix) {
			continue
		}
		rest := strings.TrimPrefix(mediaType, vendorMediaPrefix)
		version := strings.SplitN(rest, "+", 2)[0]
		if isValidAPIVersion(version) {
			return version
		}
	}
	return DefaultAPIVersion
}

func isValidAPIVersion(version string) bool {
	return supportedAPIVersions[version]
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	versions := make([]string, 0, len(supportedAPIVersions))
	for v := range supportedAPIVersions {
		versions = append(versions, v)
	}

	resp := VersionResponse{
		Name:        s.name,
		Version:     s.version,
		Commit:      s.commit,
		Date:        s.date,
		APIVersions: versions,
		Timestamp:   time.Now().UTC(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
