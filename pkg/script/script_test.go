package script

import (
	"strings"
	"testing"
)

func TestScript_Rendering(t *testing.T) {
	c := &CompiledScript{Commands: []string{"echo one", "echo two", "echo three"}}

	got := c.Script()
	want := "#!/bin/bash\necho one && \\\necho two && \\\necho three\n"
	if got != want {
		t.Fatalf("Script() = %q, want %q", got, want)
	}
}

func TestScript_SingleCommand(t *testing.T) {
	c := &CompiledScript{Commands: []string{"cd ."}}
	if got := c.Script(); got != "#!/bin/bash\ncd .\n" {
		t.Fatalf("Script() = %q", got)
	}
}

func TestFileNames(t *testing.T) {
	if got := ScriptName("myconfig"); got != "myconfig.sh" {
		t.Errorf("ScriptName = %q", got)
	}
	if got := ScriptPath("myconfig"); got != "/bazel-config/myconfig.sh" {
		t.Errorf("ScriptPath = %q", got)
	}
	if got := OutputArchiveName("myconfig"); got != "myconfig_autoconf.tar" {
		t.Errorf("OutputArchiveName = %q", got)
	}
	if got := LogFileName("myconfig"); got != "myconfig_log.txt" {
		t.Errorf("LogFileName = %q", got)
	}
}

func TestBazelTargets_PreservesOrder(t *testing.T) {
	got := bazelTargets([]string{"local_config_cc", "local_config_sh", "local_jdk"})
	want := "@local_config_cc//... @local_config_sh//... @local_jdk//..."
	if got != want {
		t.Fatalf("bazelTargets = %q, want %q", got, want)
	}
}

func TestExtractCommands(t *testing.T) {
	got := ExtractCommands("myconfig")
	want := []string{
		"/bazel-config/myconfig.sh 2> /bazel-config/log.txt",
		"tar -cf /extract.tar -C /bazel-config log.txt",
		"if [ -f /bazel-config/autoconf.tar ]; then tar -rf /extract.tar -C /bazel-config autoconf.tar; fi",
	}
	if len(got) != len(want) {
		t.Fatalf("ExtractCommands returned %d commands, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractCommands_LogBeforeConditionalArchive(t *testing.T) {
	cmds := ExtractCommands("c")
	if !strings.Contains(cmds[1], "log.txt") {
		t.Error("the log must be archived unconditionally")
	}
	if !strings.HasPrefix(cmds[2], "if [ -f ") {
		t.Error("the output archive must be appended conditionally")
	}
}
