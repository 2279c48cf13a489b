// Package container runs compiled toolchain configuration scripts against a
// Docker daemon.
//
// # Collaborators
//
// ImageBuilder bakes a compiled script and its installer helpers into an
// image committed from the request's base image. PackageInstaller optionally
// prepares that base by installing extra Debian packages first. Extractor
// runs the image and copies the extraction archive back to the host, where
// Unpack splits it into the run log and the toolchain configuration archive
// and Verify checks both against the request.
//
// All collaborators accept the APIClient interface, so tests run against a
// fake daemon. Container cleanup always runs on a background context with
// its own timeout; a cancelled pipeline still stops and removes what it
// created.
package container
