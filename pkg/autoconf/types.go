package autoconf

import (
	"maps"

	"github.com/nlopezgi/bazel-toolchains/pkg/header"
)

const (
	// KindRequest is the resource kind of an autoconfig request document.
	KindRequest = "AutoconfigRequest"

	// KindValidationResult is the resource kind of a validation result document.
	KindValidationResult = "ValidationResult"
)

const (
	// DefaultName names requests whose metadata carries no name.
	DefaultName = "autoconfig"

	// DefaultSetupCmd is the placeholder command for an empty setup stage.
	DefaultSetupCmd = "cd ."
)

// DefaultConfigRepos are the external repositories autoconfigured when a
// request does not name any.
var DefaultConfigRepos = []string{"local_config_cc"}

// Request is a declarative autoconfig request document. The header carries
// the kind, API version and request name; Spec carries the configuration.
type Request struct {
	header.Header `json:",inline" yaml:",inline"`

	Spec Spec `json:"spec" yaml:"spec"`
}

// Spec is the caller-facing configuration surface of a request.
type Spec struct {
	// BaseImage is the container image the toolchain configuration is
	// produced for. Required.
	BaseImage string `json:"baseImage" yaml:"baseImage"`

	// GitRepo is an HTTP(S) URL of a git repository cloned inside the
	// container as the project to configure against.
	GitRepo string `json:"gitRepo,omitempty" yaml:"gitRepo,omitempty"`

	// MountProject is a host directory bind mounted read-only as the
	// project. Environment references ($VAR, ${VAR}) are expanded at load
	// time.
	MountProject string `json:"mountProject,omitempty" yaml:"mountProject,omitempty"`

	// RepoPkgTar is a tar archive staged into the image and unpacked as
	// the project.
	RepoPkgTar string `json:"repoPkgTar,omitempty" yaml:"repoPkgTar,omitempty"`

	// BazelVersion pins the released Bazel version to install.
	BazelVersion string `json:"bazelVersion,omitempty" yaml:"bazelVersion,omitempty"`

	// BazelRCVersion selects a release candidate of BazelVersion.
	BazelRCVersion string `json:"bazelRCVersion,omitempty" yaml:"bazelRCVersion,omitempty"`

	// BuildBazelSrc compiles BazelVersion from its source distribution
	// instead of installing the prebuilt release.
	BuildBazelSrc bool `json:"buildBazelSrc,omitempty" yaml:"buildBazelSrc,omitempty"`

	// UseBazelHead builds Bazel from current head.
	UseBazelHead bool `json:"useBazelHead,omitempty" yaml:"useBazelHead,omitempty"`

	// ConfigRepos are the external repositories to autoconfigure, in
	// order. Defaults to local_config_cc.
	ConfigRepos []string `json:"configRepos,omitempty" yaml:"configRepos,omitempty"`

	// SetupCmd runs before anything else inside the container.
	SetupCmd string `json:"setupCmd,omitempty" yaml:"setupCmd,omitempty"`

	// Packages are debian packages installed on the base image before the
	// toolchain configuration runs.
	Packages []string `json:"packages,omitempty" yaml:"packages,omitempty"`

	// AdditionalRepos are apt source lines required by Packages.
	AdditionalRepos []string `json:"additionalRepos,omitempty" yaml:"additionalRepos,omitempty"`

	// Keys are URLs of apt keys required by Packages.
	Keys []string `json:"keys,omitempty" yaml:"keys,omitempty"`

	// Test controls whether output checks are generated. Defaults to true.
	Test *bool `json:"test,omitempty" yaml:"test,omitempty"`
}

// UseDefaultProject reports whether the request falls back to the built-in
// sample project because no project source was given.
func (s *Spec) UseDefaultProject() bool {
	return s.GitRepo == "" && s.MountProject == "" && s.RepoPkgTar == ""
}

// HasProjectTar reports whether a project archive is staged into the image,
// either the caller's or the built-in default.
func (s *Spec) HasProjectTar() bool {
	return s.RepoPkgTar != "" || s.UseDefaultProject()
}

// TestEnabled reports whether output checks are generated for the request.
func (s *Spec) TestEnabled() bool {
	return s.Test == nil || *s.Test
}

// Name returns the request name from the document metadata, falling back to
// DefaultName.
func (r *Request) Name() string {
	if name := r.Header.Name(); name != "" {
		return name
	}
	return DefaultName
}

// Normalized returns a copy of the request with defaults applied: the kind
// header, the request name, the config repo list and the setup command. The
// receiver is left unchanged so compilation stays a pure function of its
// input.
func (r *Request) Normalized() *Request {
	out := *r
	out.Metadata = maps.Clone(r.Metadata)
	out.Spec.ConfigRepos = append([]string(nil), r.Spec.ConfigRepos...)
	out.Spec.Packages = append([]string(nil), r.Spec.Packages...)
	out.Spec.AdditionalRepos = append([]string(nil), r.Spec.AdditionalRepos...)
	out.Spec.Keys = append([]string(nil), r.Spec.Keys...)

	if out.Kind == "" {
		out.Kind = KindRequest
	}
	if out.APIVersion == "" {
		out.APIVersion = header.APIVersionFor(KindRequest)
	}
	if out.Header.Name() == "" {
		out.Header.SetName(DefaultName)
	}
	if len(out.Spec.ConfigRepos) == 0 {
		out.Spec.ConfigRepos = append([]string(nil), DefaultConfigRepos...)
	}
	if out.Spec.SetupCmd == "" {
		out.Spec.SetupCmd = DefaultSetupCmd
	}
	if out.Spec.Test == nil {
		enabled := true
		out.Spec.Test = &enabled
	}
	return &out
}
