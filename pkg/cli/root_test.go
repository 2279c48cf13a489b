package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/nlopezgi/bazel-toolchains/pkg/autoconf"
)

const validRequestDoc = `kind: AutoconfigRequest
apiVersion: autoconfigrequest.bazel.build/v1
metadata:
  name: debian-test
spec:
  baseImage: gcr.io/test/base:latest
  bazelVersion: "6.0.0"
`

const invalidRequestDoc = `kind: AutoconfigRequest
metadata:
  name: broken
spec:
  baseImage: gcr.io/test/base:latest
  useBazelHead: true
  bazelVersion: "6.0.0"
`

func namedRequestDoc(name string) string {
	return fmt.Sprintf(`kind: AutoconfigRequest
metadata:
  name: %s
spec:
  baseImage: gcr.io/test/base:latest
  bazelVersion: "6.0.0"
`, name)
}

func writeRequestFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// newTestCmd builds the command tree with exit handling disabled, so tests
// observe returned errors instead of an os.Exit.
func newTestCmd() *cli.Command {
	cmd := New()
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	return cmd
}

func TestNew_CommandStructure(t *testing.T) {
	cmd := New()

	if cmd.Name != "autoconfig" {
		t.Errorf("Name = %v, want autoconfig", cmd.Name)
	}
	if cmd.Version == "" {
		t.Error("Version should not be empty")
	}

	wantCommands := []string{"compile", "validate", "run", "push", "sample", "serve", "version"}
	for _, name := range wantCommands {
		found := false
		for _, c := range cmd.Commands {
			if c.Name == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q not found", name)
		}
	}

	for _, flagName := range []string{"debug", "log-json"} {
		found := false
		for _, flag := range cmd.Flags {
			if hasName(flag, flagName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("global flag %q not found", flagName)
		}
	}
}

func TestCommandLister(_ *testing.T) {
	commandLister(context.Background(), nil)

	cmd := &cli.Command{Name: "test"}
	commandLister(context.Background(), cmd)

	rootCmd := &cli.Command{
		Name: "root",
		Commands: []*cli.Command{
			{Name: "visible1", Hidden: false},
			{Name: "hidden", Hidden: true},
			{Name: "visible2", Hidden: false},
		},
	}
	commandLister(context.Background(), rootCmd)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		wantError bool
	}{
		{name: "yaml", format: "yaml"},
		{name: "json", format: "json"},
		{name: "table", format: "table"},
		{name: "unknown", format: "xml", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedErr error

			testCmd := &cli.Command{
				Name: "test",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, capturedErr = parseOutputFormat(cmd)
					return nil
				},
			}

			if err := testCmd.Run(context.Background(), []string{"cmd", "--format", tt.format}); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if tt.wantError && capturedErr == nil {
				t.Error("expected error but got nil")
			}
			if !tt.wantError && capturedErr != nil {
				t.Errorf("unexpected error: %v", capturedErr)
			}
		})
	}
}

func TestSampleCmd(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "sample.yaml")

	cmd := newTestCmd()
	err := cmd.Run(context.Background(), []string{
		"autoconfig", "sample", "--format", "yaml", "--output", outPath,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), autoconf.KindRequest) {
		t.Errorf("sample output does not contain kind %s:\n%s", autoconf.KindRequest, data)
	}
}

func hasName(flag cli.Flag, name string) bool {
	if flag == nil {
		return false
	}
	for _, n := range flag.Names() {
		if n == name {
			return true
		}
	}
	return false
}
