// Package oci distributes compiled bundles as OCI artifacts.
//
// A bundle directory is packaged into a local OCI layout store with one
// layer per file, an artifact manifest of type
// application/vnd.bazel-toolchains.autoconfig.v1, and the registry reference
// as its tag. Push copies the tagged artifact to the registry using Docker
// credential-store auth.
package oci
