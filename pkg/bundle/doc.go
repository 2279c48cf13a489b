// Package bundle writes compiled toolchain configuration scripts to disk as
// self-contained bundle directories.
//
// # Layout
//
// A bundle directory holds the rendered script (<name>.sh), the bind mount
// declarations the script relies on (mounts.yaml), the host-side output
// checks (checks.sh), a manifest describing the bundle (manifest.yaml), and
// SHA-256 checksums of every other file (checksums.txt). Mounts and checks
// files are only written when the compiled script carries them; manifest and
// checksums can be disabled through Writer options.
package bundle
