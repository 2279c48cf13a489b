// Package cli implements the command-line interface for the autoconfig tool.
//
// # Overview
//
// The autoconfig CLI turns declarative AutoconfigRequest documents into Bazel
// toolchain configuration bundles. The pure commands (compile, validate,
// sample) never touch a container runtime; the run command drives the full
// Docker pipeline from request to extracted toolchain configs.
//
// # Commands
//
// compile - Compile requests into config bundles:
//
//	autoconfig compile --request request.yaml --output ./bundles
//	autoconfig compile -r debian.yaml -r ubuntu.yaml -o ./bundles
//	autoconfig compile -r request.yaml --push --registry ghcr.io --repository bazelbuild/autoconfig
//
// Compiles one or more request documents into install-script bundles, one
// subdirectory per request name. Repeated requests compile in parallel. With
// --push each bundle is additionally packaged as an OCI artifact and pushed
// to a registry.
//
// validate - Validate a request document (CI friendly):
//
//	autoconfig validate --request request.yaml
//	autoconfig validate -r request.yaml --format json --output result.json
//
// Prints a ValidationResult document and exits with code 1 when the request
// violates an invariant.
//
// run - Execute the full pipeline with Docker:
//
//	autoconfig run --request request.yaml --output ./out
//	autoconfig run -r request.yaml --keep-image --timeout 45m
//
// Loads, validates and compiles the request, builds the autoconfig image,
// runs the install script in a container, and unpacks the toolchain archive
// and run log into the output directory.
//
// push - Push previously compiled bundles to an OCI registry:
//
//	autoconfig push --bundle ./bundles/debian-test --registry ghcr.io --repository bazelbuild/autoconfig
//	autoconfig push -b ./bundles/debian -b ./bundles/ubuntu --registry ghcr.io --repository bazelbuild/autoconfig
//
// Packages existing bundle directories as OCI artifacts and pushes them
// without recompiling. Bundle names come from each manifest.yaml.
//
// sample - Print the built-in sample request:
//
//	autoconfig sample
//	autoconfig sample --output request.yaml
//
// serve - Start the HTTP API:
//
//	autoconfig serve
//
// version - Print build version, commit and date.
//
// # Global Flags
//
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Output Formats
//
// YAML (default):
//   - Human-readable, preserves structure
//   - Suitable for version control
//
// JSON:
//   - Machine-parseable, compact
//   - Suitable for programmatic consumption
//
// Table:
//   - Hierarchical text representation
//   - Suitable for terminal viewing
//
// # Usage Examples
//
// Complete workflow:
//
//	autoconfig sample --output request.yaml
//	autoconfig validate --request request.yaml
//	autoconfig compile --request request.yaml --output ./bundles
//	autoconfig run --request request.yaml --output ./out
//
// # Environment Variables
//
//	LOG_LEVEL    Set logging verbosity (debug, info, warn, error)
//	PORT         Listen port for the serve command
//	DOCKER_HOST  Docker daemon endpoint for the run command
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, validation failure, execution failure)
//	2  Context canceled or timeout
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/autoconf - Request documents, loading and validation
//   - pkg/script - Script compilation
//   - pkg/bundle - Bundle writing
//   - pkg/container - Docker collaborators for the run pipeline
//   - pkg/oci - OCI packaging and distribution
//   - pkg/serializer - Output formatting
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/nlopezgi/bazel-toolchains/pkg/cli.version=1.0.0'"
package cli
