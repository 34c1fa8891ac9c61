package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pluginrelease/pkg/config"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"classify", "validate", "release", "registry", "serve", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
	show, _, err := root.Find([]string{"registry", "show"})
	if err != nil || show.Name() != "show" {
		t.Error("registry show not registered")
	}
}

func TestRegistryLocation(t *testing.T) {
	out := t.TempDir()
	cfg := config.Default()
	cfg.OutputDir = out
	local := filepath.Join(out, cfg.RegistryFile)

	if got := registryLocation("redis://localhost/0", cfg); got != "redis://localhost/0" {
		t.Errorf("explicit uri = %q", got)
	}
	if got := registryLocation("", cfg); got != local {
		t.Errorf("no metadata url = %q, want %q", got, local)
	}

	cfg.MetadataURL = "https://plugins.example.org"
	if got := registryLocation("", cfg); got != "https://plugins.example.org/plugins.json" {
		t.Errorf("remote = %q", got)
	}
	if err := os.WriteFile(local, []byte(`{"plugins":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := registryLocation("", cfg); got != local {
		t.Errorf("local file present = %q, want %q", got, local)
	}

	cfg.Snapshot = "null:"
	if got := registryLocation("", cfg); got != "null:" {
		t.Errorf("configured snapshot = %q", got)
	}
}

func TestSuiteTable(t *testing.T) {
	r := suite.Classify([]module.Module{tmod("app", "core"), tmod("core")})
	out := suiteTable(r, release.DefaultPathResolver(), 0).Render()
	for _, want := range []string{"Plugin", "app", "core", "app-1.0.zip"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(io.Discard, LogInfo).RootCommand()
			var out strings.Builder
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !strings.Contains(out.String(), "pluginrelease") {
				t.Errorf("%s script does not mention the command", shell)
			}
		})
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("unknown shell should fail")
	}
}
