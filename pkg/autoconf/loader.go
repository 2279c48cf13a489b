package autoconf

import (
	"os"
	"strconv"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/header"
	"github.com/nlopezgi/bazel-toolchains/pkg/version"
)

// reservedSpecKeys are document keys the compiler manages internally. A
// request that sets one is rejected before anything else is checked.
var reservedSpecKeys = map[string]bool{
	"files":         true,
	"commands":      true,
	"mounts":        true,
	"installScript": true,
	"outputTar":     true,
	"logFile":       true,
	"workdir":       true,
	"imageName":     true,
}

// knownSpecKeys is the caller-facing configuration surface, used to suggest
// a correction when a request carries a misspelled key.
var knownSpecKeys = []string{
	"baseImage",
	"gitRepo",
	"mountProject",
	"repoPkgTar",
	"bazelVersion",
	"bazelRCVersion",
	"buildBazelSrc",
	"useBazelHead",
	"configRepos",
	"setupCmd",
	"packages",
	"additionalRepos",
	"keys",
	"test",
}

// Load reads and parses a request document from path. The returned request
// is normalized but not validated; run Validate separately.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read request document", err)
	}
	req, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"failed to load request document", err, map[string]any{"path": path})
	}
	return req, nil
}

// Parse decodes a request document from YAML or JSON bytes. It rejects
// reserved and unknown spec keys, expands environment references in
// mountProject, checks the Bazel version fields parse, and returns the
// normalized request. Cross-field invariants are left to Validate.
func Parse(data []byte) (*Request, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse request document", err)
	}
	if err := checkSpecKeys(&doc); err != nil {
		return nil, err
	}

	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode request document", err)
	}
	req.Spec.MountProject = os.ExpandEnv(req.Spec.MountProject)

	if v := req.Spec.BazelVersion; v != "" {
		if _, err := version.ParseVersion(v); err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidRequest,
				"bazelVersion %q is not a dotted release version", v)
		}
	}
	if rc := req.Spec.BazelRCVersion; rc != "" {
		if _, err := strconv.Atoi(rc); err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidRequest,
				"bazelRCVersion %q is not a release candidate number", rc)
		}
	}
	return req.Normalized(), nil
}

// checkSpecKeys walks the spec mapping of the raw document and rejects
// reserved keys first, then unknown ones. Working on the raw node keeps
// misspelled keys visible; decoding alone would silently drop them.
func checkSpecKeys(doc *yaml.Node) error {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}
	var spec *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "spec" {
			spec = root.Content[i+1]
			break
		}
	}
	if spec == nil || spec.Kind != yaml.MappingNode {
		return nil
	}

	var unknown []string
	for i := 0; i+1 < len(spec.Content); i += 2 {
		key := spec.Content[i].Value
		if reservedSpecKeys[key] {
			return reserved(key)
		}
		if !isKnownSpecKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		key := unknown[0]
		if suggestion, ok := closestSpecKey(key); ok {
			return errors.Newf(errors.ErrCodeInvalidRequest,
				"unknown spec field %q (did you mean %q?)", key, suggestion)
		}
		return errors.Newf(errors.ErrCodeInvalidRequest, "unknown spec field %q", key)
	}
	return nil
}

// requestName extracts metadata.name from a raw document, for reporting on
// requests that were rejected before full decoding.
func requestName(data []byte) string {
	var doc struct {
		header.Header `yaml:",inline"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.Header.Name()
}

func isKnownSpecKey(key string) bool {
	for _, known := range knownSpecKeys {
		if key == known {
			return true
		}
	}
	return false
}

// closestSpecKey returns the known key nearest to key by edit distance, if
// the distance is small enough to be a plausible typo.
func closestSpecKey(key string) (string, bool) {
	const maxDistance = 5

	best, bestDist := "", maxDistance+1
	for _, known := range knownSpecKeys {
		if d := levenshtein.ComputeDistance(key, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best, bestDist <= maxDistance
}
