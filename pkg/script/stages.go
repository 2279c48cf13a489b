package script

import (
	"fmt"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
)

// Stage names, in pipeline order. Each compiled script contains every stage:
// a stage with nothing to do still emits its banner and a placeholder
// command so logs keep a fixed shape.
const (
	StageSetup         = "setup"
	StageBazelInstall  = "bazel install"
	StageAcquisition   = "project acquisition"
	StageAutoconfigure = "autoconfigure"
	StageDerefSymlinks = "dereference symlinks"
	StageOutputCopy    = "copy outputs"
	StageCleanup       = "cleanup"
)

// stageBuilder is a pure function from a normalized request to one stage's
// command list, banner excluded.
type stageBuilder struct {
	name  string
	build func(*autoconf.Request) []string
}

// pipeline is the fixed stage order of every compiled script.
var pipeline = []stageBuilder{
	{StageSetup, setupStage},
	{StageBazelInstall, bazelInstallStage},
	{StageAcquisition, acquisitionStage},
	{StageAutoconfigure, autoconfigureStage},
	{StageDerefSymlinks, derefSymlinksStage},
	{StageOutputCopy, outputCopyStage},
	{StageCleanup, cleanupStage},
}

func banner(stage string) string {
	return fmt.Sprintf("echo === %s ===", stage)
}

// setupStage runs the caller's setup command. Normalization guarantees a
// non-empty command, but an unnormalized request still compiles.
func setupStage(req *autoconf.Request) []string {
	cmd := req.Spec.SetupCmd
	if cmd == "" {
		cmd = noopCommand
	}
	return []string{cmd}
}

// bazelInstallStage installs Bazel by the single strategy the request
// selects: head build, source build, release candidate, or release. With no
// version pinned the base image's Bazel is used as is.
func bazelInstallStage(req *autoconf.Request) []string {
	spec := &req.Spec
	switch {
	case spec.UseBazelHead:
		return []string{ConfigDir + "/" + InstallHeadScript}
	case spec.BazelVersion == "":
		return []string{noopCommand}
	case spec.BuildBazelSrc:
		url := fmt.Sprintf(distURLFormat, spec.BazelVersion, spec.BazelVersion)
		return []string{ConfigDir + "/" + InstallSourceScript + " " + url}
	case spec.BazelRCVersion != "":
		url := fmt.Sprintf(rcURLFormat,
			spec.BazelVersion, spec.BazelRCVersion, spec.BazelVersion, spec.BazelRCVersion)
		return []string{ConfigDir + "/" + InstallVersionScript + " " + url}
	default:
		url := fmt.Sprintf(releaseURLFormat, spec.BazelVersion, spec.BazelVersion)
		return []string{ConfigDir + "/" + InstallVersionScript + " " + url}
	}
}

// acquisitionStage materializes the project under ProjectDir: a git clone,
// unpacking a staged archive, or nothing when the project arrives as a bind
// mount.
func acquisitionStage(req *autoconf.Request) []string {
	spec := &req.Spec
	switch {
	case spec.GitRepo != "":
		return []string{fmt.Sprintf("cd %s && git clone %s project_src", ConfigDir, spec.GitRepo)}
	case spec.HasProjectTar():
		return []string{
			"mkdir -p " + ProjectDir,
			fmt.Sprintf("tar -xf %s -C %s", ProjectTar, ProjectDir),
		}
	default:
		return []string{noopCommand}
	}
}

// autoconfigureStage runs the Bazel build that triggers toolchain
// autoconfiguration for every configured repository, in request order. The
// default project ships as BUILD.sample and is activated here so staging it
// never shadows a real project's BUILD file.
func autoconfigureStage(req *autoconf.Request) []string {
	cmds := []string{"cd " + ProjectDir}
	if req.Spec.UseDefaultProject() {
		cmds = append(cmds,
			"touch WORKSPACE",
			"mv BUILD.sample BUILD",
		)
	}
	return append(cmds, "bazel build "+bazelTargets(configRepos(req)))
}

// derefSymlinksStage replaces every symlink under the configured external
// repositories with its target, so the copied output is self-contained. A
// missing repository path fails the run here rather than producing an empty
// output.
func derefSymlinksStage(req *autoconf.Request) []string {
	cmds := make([]string, 0, len(configRepos(req)))
	for _, repo := range configRepos(req) {
		cmds = append(cmds, fmt.Sprintf(
			`find $(bazel info output_base)/external/%s -type l -exec bash -c 'ln -f "$(readlink -m "$0")" "$0"' {} \;`,
			repo))
	}
	return cmds
}

// outputCopyStage copies the autoconfigured repositories out of Bazel's
// output base and archives them as OutputTar.
func outputCopyStage(req *autoconf.Request) []string {
	cmds := []string{"mkdir " + OutputDir}
	for _, repo := range configRepos(req) {
		cmds = append(cmds, fmt.Sprintf(
			"cp -dr $(bazel info output_base)/external/%s %s", repo, OutputDir))
	}
	return append(cmds, fmt.Sprintf("tar -cf %s -C %s .", OutputTar, OutputDir))
}

// cleanupStage shuts the Bazel server down and removes what the script
// created. The leading semicolon breaks the && chain so cleanup runs even
// after a failed build.
func cleanupStage(req *autoconf.Request) []string {
	cmds := []string{"cd . ; bazel clean"}
	if req.Spec.UseDefaultProject() {
		cmds = append(cmds, "rm WORKSPACE")
	}
	if req.Spec.GitRepo != "" {
		cmds = append(cmds, fmt.Sprintf("cd %s && rm -drf project_src", ConfigDir))
	}
	return cmds
}

// checksFor builds the host-side output checks for a request: every
// configured repository must appear in the extracted archive and the run
// log must be non-empty. Disabled by spec.test=false.
func checksFor(req *autoconf.Request) []string {
	if !req.Spec.TestEnabled() {
		return nil
	}
	name := req.Name()
	checks := make([]string, 0, len(configRepos(req))+1)
	for _, repo := range configRepos(req) {
		checks = append(checks, fmt.Sprintf("tar -tf %s ./%s", OutputArchiveName(name), repo))
	}
	return append(checks, fmt.Sprintf("test -s %s", LogFileName(name)))
}

// mountsFor builds the bind mount list for a request. Only mounted projects
// need one; the project is mounted read-only at ProjectDir.
func mountsFor(req *autoconf.Request) []MountSpec {
	if req.Spec.MountProject == "" {
		return nil
	}
	return []MountSpec{{
		Source:   req.Spec.MountProject,
		Target:   ProjectDir,
		ReadOnly: true,
	}}
}

// configRepos returns the repositories to configure, defaulting like
// normalization does so stage builders stay total.
func configRepos(req *autoconf.Request) []string {
	if len(req.Spec.ConfigRepos) > 0 {
		return req.Spec.ConfigRepos
	}
	return autoconf.DefaultConfigRepos
}
