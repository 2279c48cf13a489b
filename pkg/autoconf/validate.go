package autoconf

import (
	"fmt"
	"strings"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

// ViolationKind classifies why a request was rejected.
type ViolationKind string

const (
	// ViolationReservedField marks use of a document key the compiler
	// manages internally.
	ViolationReservedField ViolationKind = "ReservedField"

	// ViolationMissingRequired marks an absent required field.
	ViolationMissingRequired ViolationKind = "MissingRequired"

	// ViolationMutualExclusion marks two fields that cannot be combined.
	ViolationMutualExclusion ViolationKind = "MutualExclusion"

	// ViolationMissingDependency marks a field set without another field
	// it depends on.
	ViolationMissingDependency ViolationKind = "MissingDependency"
)

// Violation describes a single request rejection. Validation stops at the
// first violation found, so a request maps to at most one.
type Violation struct {
	Kind   ViolationKind `json:"kind" yaml:"kind"`
	Fields []string      `json:"fields" yaml:"fields"`
	Detail string        `json:"detail" yaml:"detail"`
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s violation: %s: %s", v.Kind, strings.Join(v.Fields, ", "), v.Detail)
}

func reserved(field string) *Violation {
	return &Violation{
		Kind:   ViolationReservedField,
		Fields: []string{field},
		Detail: "the field is managed internally and cannot be set by a request",
	}
}

func missingRequired(field string) *Violation {
	return &Violation{
		Kind:   ViolationMissingRequired,
		Fields: []string{field},
		Detail: "the field is required",
	}
}

func mutualExclusion(detail string, fields ...string) *Violation {
	return &Violation{
		Kind:   ViolationMutualExclusion,
		Fields: fields,
		Detail: detail,
	}
}

func missingDependency(detail string, fields ...string) *Violation {
	return &Violation{
		Kind:   ViolationMissingDependency,
		Fields: fields,
		Detail: detail,
	}
}

// Validate checks the cross-field invariants of a request and returns the
// first violation found, or nil. Checks run in a fixed order so a request
// with several problems always reports the same one.
func Validate(req *Request) error {
	if req == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "request is nil")
	}
	spec := &req.Spec

	if spec.BaseImage == "" {
		return missingRequired("baseImage")
	}
	if spec.UseBazelHead && (spec.BazelVersion != "" || spec.BazelRCVersion != "") {
		return mutualExclusion(
			"a pinned Bazel version cannot be combined with a head build",
			"useBazelHead", "bazelVersion", "bazelRCVersion")
	}
	if spec.UseBazelHead && spec.BuildBazelSrc {
		return mutualExclusion(
			"a source build targets a released version, not head",
			"useBazelHead", "buildBazelSrc")
	}
	if spec.BuildBazelSrc && spec.BazelRCVersion != "" {
		return mutualExclusion(
			"release candidates ship no source distribution",
			"buildBazelSrc", "bazelRCVersion")
	}
	if spec.BuildBazelSrc && spec.BazelVersion == "" {
		return missingDependency(
			"a source build needs bazelVersion to pick the distribution",
			"buildBazelSrc", "bazelVersion")
	}
	if spec.BazelRCVersion != "" && spec.BazelVersion == "" {
		return missingDependency(
			"a release candidate needs bazelVersion to pick the release",
			"bazelRCVersion", "bazelVersion")
	}
	if len(spec.Packages) == 0 && (len(spec.AdditionalRepos) > 0 || len(spec.Keys) > 0) {
		return missingDependency(
			"apt repos and keys are only used when packages are installed",
			"additionalRepos", "keys", "packages")
	}
	if spec.GitRepo != "" && spec.MountProject != "" {
		return mutualExclusion(
			"a project comes from a git clone or a bind mount, not both",
			"gitRepo", "mountProject")
	}
	return nil
}
