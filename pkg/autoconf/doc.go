// Package autoconf defines the autoconfig request document and its
// validation rules.
//
// A request is a Kubernetes-style resource document of kind
// AutoconfigRequest whose spec names a base container image and describes
// how to obtain Bazel and a project to configure against. Requests arrive
// as YAML or JSON, from files via Load or raw bytes via Parse.
//
// # Loading
//
// The loader enforces the document boundary: keys the compiler manages
// internally (files, commands, mounts, and friends) are rejected as
// reserved, unknown spec keys are rejected with a spelling suggestion, and
// environment references in mountProject are expanded. Parsed requests are
// normalized: absent fields receive their defaults (local_config_cc, the
// placeholder setup command, output checks enabled) so later stages never
// distinguish absent from default.
//
// # Validation
//
// Validate checks the cross-field invariants of a normalized request and
// reports the first Violation in a fixed precedence order: the required
// base image, the Bazel install strategy conflicts, the package
// dependencies, and the project source conflicts. A request with several
// problems always reports the same violation, so results are stable for
// callers and tests.
//
// The package also carries the built-in sample request served by the CLI
// and API, and the default project staged when a request names no project
// source.
package autoconf
