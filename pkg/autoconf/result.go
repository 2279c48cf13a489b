package autoconf

import (
	"github.com/nlopezgi/bazel-toolchains/pkg/header"
)

// ValidationStatus is the overall outcome of validating a request.
type ValidationStatus string

const (
	// ValidationStatusValid means the request satisfied every invariant.
	ValidationStatusValid ValidationStatus = "valid"

	// ValidationStatusInvalid means the request was rejected.
	ValidationStatusInvalid ValidationStatus = "invalid"
)

// ValidationResult is the document returned by the validate operations. A
// valid request carries no violation.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Status    ValidationStatus `json:"status" yaml:"status"`
	Violation *Violation       `json:"violation,omitempty" yaml:"violation,omitempty"`
}

// NewValidationResult builds the result document for a validated request.
// A nil violation means the request is valid.
func NewValidationResult(name string, violation *Violation) *ValidationResult {
	res := &ValidationResult{Status: ValidationStatusValid}
	res.Set(KindValidationResult)
	if name == "" {
		name = DefaultName
	}
	res.SetName(name)

	if violation != nil {
		res.Status = ValidationStatusInvalid
		res.Violation = violation
	}
	return res
}

// Valid reports whether the result carries no violation.
func (r *ValidationResult) Valid() bool {
	return r.Status == ValidationStatusValid
}
