package script

import (
	"fmt"
	"strings"

	"github.com/nlopezgi/bazel-toolchains/pkg/header"
)

// KindCompiledScript is the resource kind of a compiled script document.
const KindCompiledScript = "CompiledScript"

// Fixed paths inside the autoconfig container. The compiled script, the
// installer helpers, and the staged project archive all live under
// ConfigDir; the extractor collects OutputTar and LogFile from there.
const (
	// ConfigDir is the working directory of the compiled script.
	ConfigDir = "/bazel-config"

	// ProjectDir holds the project the toolchain is configured against.
	ProjectDir = ConfigDir + "/project_src"

	// ProjectTar is where a staged project archive lands before unpacking.
	ProjectTar = ConfigDir + "/project_src.tar"

	// OutputDir collects the autoconfigured external repositories.
	OutputDir = ConfigDir + "/autoconf_out"

	// OutputTar is the archive of OutputDir produced by the script.
	OutputTar = ConfigDir + "/autoconf.tar"

	// LogFile captures the script's stderr.
	LogFile = ConfigDir + "/log.txt"

	// ExtractTar is the archive the extractor copies out of the container.
	ExtractTar = "/extract.tar"
)

// Installer helper scripts staged next to the compiled script.
const (
	InstallHeadScript    = "install_bazel_head.sh"
	InstallVersionScript = "install_bazel_version.sh"
	InstallSourceScript  = "install_bazel_source.sh"
)

// Bazel release download locations.
const (
	releaseURLFormat = "https://releases.bazel.build/%s/release/bazel-%s-installer-linux-x86_64.sh"
	rcURLFormat      = "https://releases.bazel.build/%s/rc%s/bazel-%src%s-installer-linux-x86_64.sh"
	distURLFormat    = "https://releases.bazel.build/%s/release/bazel-%s-dist.zip"
)

// noopCommand keeps a skipped stage well-formed shell.
const noopCommand = "cd ."

const (
	shebang       = "#!/bin/bash\n"
	commandJoiner = " && \\\n"
)

// MountSpec declares a bind mount the compiled script relies on. Mounts are
// never executed by the script itself; they are handed to the container
// runtime alongside it.
type MountSpec struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	ReadOnly bool   `json:"readOnly" yaml:"readOnly"`
}

// StageSummary describes one pipeline stage of a compiled script.
type StageSummary struct {
	Name     string `json:"name" yaml:"name"`
	Commands int    `json:"commands" yaml:"commands"`
}

// CompiledScript is the output document of compilation: the ordered command
// list of the toolchain configuration script, the mounts it needs, and the
// checks that verify its outputs.
type CompiledScript struct {
	header.Header `json:",inline" yaml:",inline"`

	// Commands is the full command list, stage banners included, in
	// execution order.
	Commands []string `json:"commands" yaml:"commands"`

	// Mounts are bind mounts required when running the script.
	Mounts []MountSpec `json:"mounts,omitempty" yaml:"mounts,omitempty"`

	// Checks verify the run outputs on the host after extraction.
	Checks []string `json:"checks,omitempty" yaml:"checks,omitempty"`

	// Stages summarizes the pipeline the commands were built from.
	Stages []StageSummary `json:"stages" yaml:"stages"`
}

// Script renders the commands as a single bash script: one chain joined
// with " && \" line continuations under a bash shebang. The rendering is a
// pure function of Commands, so identical compilations yield byte-identical
// scripts.
func (c *CompiledScript) Script() string {
	return shebang + strings.Join(c.Commands, commandJoiner) + "\n"
}

// ScriptName returns the file name of the compiled script for a request
// name, as staged in the container and written into bundles.
func ScriptName(name string) string {
	return name + ".sh"
}

// ScriptPath returns the absolute container path of the compiled script.
func ScriptPath(name string) string {
	return ConfigDir + "/" + ScriptName(name)
}

// OutputArchiveName returns the host file name of the extracted toolchain
// configuration archive.
func OutputArchiveName(name string) string {
	return name + "_autoconf.tar"
}

// LogFileName returns the host file name of the extracted run log.
func LogFileName(name string) string {
	return name + "_log.txt"
}

// bazelTargets renders the configured repositories as Bazel build targets,
// preserving order: "@a//... @b//...".
func bazelTargets(repos []string) string {
	targets := make([]string, 0, len(repos))
	for _, repo := range repos {
		targets = append(targets, fmt.Sprintf("@%s//...", repo))
	}
	return strings.Join(targets, " ")
}
