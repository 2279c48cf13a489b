package script

import (
	"strings"
	"testing"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
)

func request(t *testing.T, spec autoconf.Spec) *autoconf.Request {
	t.Helper()
	req := &autoconf.Request{Spec: spec}
	req.SetName("testcfg")
	return req
}

func compile(t *testing.T, spec autoconf.Spec) *CompiledScript {
	t.Helper()
	compiled, err := Compile(request(t, spec))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return compiled
}

func TestCompile_Deterministic(t *testing.T) {
	req := request(t, autoconf.Spec{
		BaseImage:    "debian:10",
		BazelVersion: "0.10.0",
		GitRepo:      "https://github.com/bazelbuild/rules_go.git",
	})

	c := New(WithVersion("1.0.0"))
	first, err := c.Compile(req)
	if err != nil {
		t.Fatalf("first Compile failed: %v", err)
	}
	second, err := c.Compile(req)
	if err != nil {
		t.Fatalf("second Compile failed: %v", err)
	}

	if first.Script() != second.Script() {
		t.Fatal("compiling the same request twice must yield byte-identical scripts")
	}
	if len(first.Commands) != len(second.Commands) {
		t.Fatal("command lists differ between identical compilations")
	}
}

func TestCompile_LeavesRequestUntouched(t *testing.T) {
	req := &autoconf.Request{Spec: autoconf.Spec{BaseImage: "debian:10"}}
	if _, err := Compile(req); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if req.Spec.SetupCmd != "" || req.Spec.ConfigRepos != nil || req.Kind != "" {
		t.Fatal("Compile must not normalize the caller's request in place")
	}
}

func TestCompile_StagePipeline(t *testing.T) {
	compiled := compile(t, autoconf.Spec{BaseImage: "debian:10"})

	wantStages := []string{
		StageSetup,
		StageBazelInstall,
		StageAcquisition,
		StageAutoconfigure,
		StageDerefSymlinks,
		StageOutputCopy,
		StageCleanup,
	}
	if len(compiled.Stages) != len(wantStages) {
		t.Fatalf("got %d stages, want %d", len(compiled.Stages), len(wantStages))
	}

	script := compiled.Script()
	lastIdx := -1
	for i, want := range wantStages {
		if compiled.Stages[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, compiled.Stages[i].Name, want)
		}
		if compiled.Stages[i].Commands < 1 {
			t.Errorf("stage %q emitted no commands", want)
		}
		idx := strings.Index(script, banner(want))
		if idx < 0 {
			t.Fatalf("script is missing the %q banner", want)
		}
		if idx <= lastIdx {
			t.Fatalf("stage %q banner out of order", want)
		}
		lastIdx = idx
	}
}

func TestCompile_Header(t *testing.T) {
	req := request(t, autoconf.Spec{BaseImage: "debian:10"})

	compiled, err := New(WithVersion("2.3.4")).Compile(req)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if compiled.Kind != KindCompiledScript {
		t.Errorf("kind = %q, want %q", compiled.Kind, KindCompiledScript)
	}
	if compiled.APIVersion != "compiledscript.bazel.build/v1" {
		t.Errorf("apiVersion = %q", compiled.APIVersion)
	}
	if compiled.Name() != "testcfg" {
		t.Errorf("name = %q, want testcfg", compiled.Name())
	}
	if compiled.Metadata["compiler-version"] != "2.3.4" {
		t.Errorf("compiler-version = %q, want 2.3.4", compiled.Metadata["compiler-version"])
	}
}

func TestCompile_BazelInstallVariants(t *testing.T) {
	tests := []struct {
		name string
		spec autoconf.Spec
		want string
	}{
		{
			name: "pinned release",
			spec: autoconf.Spec{BaseImage: "debian:10", BazelVersion: "0.10.0"},
			want: "/bazel-config/install_bazel_version.sh https://releases.bazel.build/0.10.0/release/bazel-0.10.0-installer-linux-x86_64.sh",
		},
		{
			name: "release candidate",
			spec: autoconf.Spec{BaseImage: "debian:10", BazelVersion: "0.11.0", BazelRCVersion: "2"},
			want: "/bazel-config/install_bazel_version.sh https://releases.bazel.build/0.11.0/rc2/bazel-0.11.0rc2-installer-linux-x86_64.sh",
		},
		{
			name: "source build",
			spec: autoconf.Spec{BaseImage: "debian:10", BazelVersion: "0.10.0", BuildBazelSrc: true},
			want: "/bazel-config/install_bazel_source.sh https://releases.bazel.build/0.10.0/release/bazel-0.10.0-dist.zip",
		},
		{
			name: "head build",
			spec: autoconf.Spec{BaseImage: "debian:10", UseBazelHead: true},
			want: "/bazel-config/install_bazel_head.sh",
		},
		{
			name: "no version keeps image bazel",
			spec: autoconf.Spec{BaseImage: "debian:10"},
			want: noopCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := compile(t, tt.spec)
			if !containsCommand(compiled.Commands, tt.want) {
				t.Fatalf("commands %v\nmissing install command %q", compiled.Commands, tt.want)
			}
		})
	}
}

func TestCompile_ConfigReposOrdered(t *testing.T) {
	compiled := compile(t, autoconf.Spec{
		BaseImage:   "debian:10",
		ConfigRepos: []string{"local_config_cc", "local_config_sh"},
	})

	want := "bazel build @local_config_cc//... @local_config_sh//..."
	if !containsCommand(compiled.Commands, want) {
		t.Fatalf("commands %v\nmissing build command %q", compiled.Commands, want)
	}

	derefCC := `find $(bazel info output_base)/external/local_config_cc -type l -exec bash -c 'ln -f "$(readlink -m "$0")" "$0"' {} \;`
	derefSH := `find $(bazel info output_base)/external/local_config_sh -type l -exec bash -c 'ln -f "$(readlink -m "$0")" "$0"' {} \;`
	if !containsCommand(compiled.Commands, derefCC) || !containsCommand(compiled.Commands, derefSH) {
		t.Fatal("missing symlink dereference commands for configured repos")
	}

	if !containsCommand(compiled.Commands, "cp -dr $(bazel info output_base)/external/local_config_sh /bazel-config/autoconf_out") {
		t.Fatal("missing output copy for local_config_sh")
	}
	if !containsCommand(compiled.Commands, "tar -cf /bazel-config/autoconf.tar -C /bazel-config/autoconf_out .") {
		t.Fatal("missing output archive command")
	}
}

func TestCompile_DefaultProject(t *testing.T) {
	compiled := compile(t, autoconf.Spec{BaseImage: "debian:10"})

	for _, want := range []string{
		"mkdir -p /bazel-config/project_src",
		"tar -xf /bazel-config/project_src.tar -C /bazel-config/project_src",
		"cd /bazel-config/project_src",
		"touch WORKSPACE",
		"mv BUILD.sample BUILD",
		"rm WORKSPACE",
	} {
		if !containsCommand(compiled.Commands, want) {
			t.Errorf("commands missing %q", want)
		}
	}
	if len(compiled.Mounts) != 0 {
		t.Errorf("default project must not need mounts, got %v", compiled.Mounts)
	}
}

func TestCompile_GitRepoProject(t *testing.T) {
	compiled := compile(t, autoconf.Spec{
		BaseImage: "debian:10",
		GitRepo:   "https://github.com/bazelbuild/rules_go.git",
	})

	if !containsCommand(compiled.Commands,
		"cd /bazel-config && git clone https://github.com/bazelbuild/rules_go.git project_src") {
		t.Error("missing git clone command")
	}
	if !containsCommand(compiled.Commands, "cd /bazel-config && rm -drf project_src") {
		t.Error("missing clone cleanup command")
	}
	if containsCommand(compiled.Commands, "touch WORKSPACE") {
		t.Error("cloned projects must not receive default project markers")
	}
	if len(compiled.Mounts) != 0 {
		t.Errorf("cloned projects must not need mounts, got %v", compiled.Mounts)
	}
}

func TestCompile_MountedProject(t *testing.T) {
	compiled := compile(t, autoconf.Spec{
		BaseImage:    "debian:10",
		MountProject: "/home/user/project",
	})

	if len(compiled.Mounts) != 1 {
		t.Fatalf("mounts = %v, want exactly one", compiled.Mounts)
	}
	m := compiled.Mounts[0]
	if m.Source != "/home/user/project" || m.Target != ProjectDir || !m.ReadOnly {
		t.Fatalf("mount = %+v, want read-only bind to %s", m, ProjectDir)
	}

	if containsCommand(compiled.Commands, "tar -xf /bazel-config/project_src.tar -C /bazel-config/project_src") {
		t.Error("mounted projects must not unpack a staged archive")
	}
	if containsCommand(compiled.Commands, "mv BUILD.sample BUILD") {
		t.Error("mounted projects must not receive default project markers")
	}
}

func TestCompile_StagedTarProject(t *testing.T) {
	compiled := compile(t, autoconf.Spec{
		BaseImage:  "debian:10",
		RepoPkgTar: "/tmp/project.tar",
	})

	if !containsCommand(compiled.Commands, "tar -xf /bazel-config/project_src.tar -C /bazel-config/project_src") {
		t.Error("staged projects must unpack the archive")
	}
	if containsCommand(compiled.Commands, "touch WORKSPACE") {
		t.Error("caller-provided projects must not receive default project markers")
	}
}

func TestCompile_CleanupAlwaysRuns(t *testing.T) {
	compiled := compile(t, autoconf.Spec{BaseImage: "debian:10"})

	// The cleanup stage begins with a semicolon-joined command so it is
	// reached even when an earlier command in the && chain failed.
	if !containsCommand(compiled.Commands, "cd . ; bazel clean") {
		t.Fatal("cleanup must start with the chain-breaking bazel clean")
	}
}

func TestCompile_Checks(t *testing.T) {
	compiled := compile(t, autoconf.Spec{
		BaseImage:   "debian:10",
		ConfigRepos: []string{"local_config_cc", "local_config_sh"},
	})

	want := []string{
		"tar -tf testcfg_autoconf.tar ./local_config_cc",
		"tar -tf testcfg_autoconf.tar ./local_config_sh",
		"test -s testcfg_log.txt",
	}
	if len(compiled.Checks) != len(want) {
		t.Fatalf("checks = %v, want %v", compiled.Checks, want)
	}
	for i := range want {
		if compiled.Checks[i] != want[i] {
			t.Errorf("check %d = %q, want %q", i, compiled.Checks[i], want[i])
		}
	}
}

func TestCompile_ChecksDisabled(t *testing.T) {
	disabled := false
	compiled := compile(t, autoconf.Spec{BaseImage: "debian:10", Test: &disabled})
	if len(compiled.Checks) != 0 {
		t.Fatalf("checks = %v, want none with test disabled", compiled.Checks)
	}
}

func TestCompile_InvalidRequest(t *testing.T) {
	_, err := Compile(request(t, autoconf.Spec{}))
	if err == nil {
		t.Fatal("Compile accepted an invalid request")
	}

	var violation *autoconf.Violation
	if !errors.As(err, &violation) {
		t.Fatalf("Compile returned %T, want *autoconf.Violation", err)
	}
	if violation.Kind != autoconf.ViolationMissingRequired {
		t.Fatalf("violation kind = %q, want %q", violation.Kind, autoconf.ViolationMissingRequired)
	}
}

func TestCompile_NilRequest(t *testing.T) {
	if _, err := Compile(nil); err == nil {
		t.Fatal("Compile(nil) returned nil error")
	}
}

func containsCommand(commands []string, want string) bool {
	for _, cmd := range commands {
		if cmd == want {
			return true
		}
	}
	return false
}
