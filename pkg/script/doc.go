// Package script compiles autoconfig requests into toolchain configuration
// scripts.
//
// Compilation is deterministic and pure: a validated request maps to a
// fixed pipeline of stages (setup, bazel install, project acquisition,
// autoconfigure, symlink dereferencing, output copy, cleanup), each a pure
// function from the request to its command list. The stages are joined into
// a single bash command chain by CompiledScript.Script, so compiling the
// same request twice yields byte-identical output. Compilation never
// touches Docker, the network, or the filesystem; running the script is
// pkg/container's job.
//
// # Script contract
//
// Compiled scripts run with /bazel-config as their working directory and
// find everything they need under it: the installer helpers, an optional
// staged project archive, and the project itself at
// /bazel-config/project_src. Outputs land at fixed paths, the toolchain
// archive at /bazel-config/autoconf.tar and the stderr log at
// /bazel-config/log.txt, where ExtractCommands collects them into
// /extract.tar.
//
// Every command is chained with && except cleanup, which starts with a
// semicolon so the Bazel server shuts down and scratch files are removed
// even when the build fails.
package script
