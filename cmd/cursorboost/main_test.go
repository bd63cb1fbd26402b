package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modoterra/cursorboost/pkg/config"
	"github.com/modoterra/cursorboost/pkg/daemon"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = config.DefaultConfigPath
	socketPath = ""
	projectsDiscoverWrite = false
	configInitForce = false
	showRaw, showSnapshot = false, false

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig saves a default config whose base path is base.
func writeConfig(t *testing.T, base string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cursorboost.yaml")
	c := config.Default()
	c.Projects.BasePath = base
	if err := config.Save(c, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "cursorboost dev") {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cb", "cursorboost.yaml")

	if _, err := run(t, "config", "init", "--config", path); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "config", "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err := run(t, "config", "validate", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "valid") {
		t.Errorf("validate output = %q", out)
	}
}

func TestConfigValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "config", "validate", path); err == nil {
		t.Error("expected validation error")
	}
}

func TestConfigShowUsesDefaultsWhenMissing(t *testing.T) {
	out, err := run(t, "config", "show", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# source: defaults") {
		t.Errorf("config show output = %q", out)
	}
	if !strings.Contains(out, "model: chatgpt-4o-latest") {
		t.Errorf("config show missing llm model:\n%s", out)
	}
}

func TestProjectsDiscoverWriteAndList(t *testing.T) {
	base := t.TempDir()
	for _, p := range []struct{ dir, marker string }{
		{"shop", "composer.json"},
		{"api", "go.mod"},
		{"notes", ""},
	} {
		dir := filepath.Join(base, p.dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if p.marker != "" {
			if err := os.WriteFile(filepath.Join(dir, p.marker), nil, 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	cfgPath := writeConfig(t, base)

	out, err := run(t, "projects", "discover", "--write", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "wrote 2 project(s)") {
		t.Errorf("discover output = %q", out)
	}

	list, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), config.DefaultListFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(list) != "# Projects\n\n- api\n- shop\n" {
		t.Errorf("list file = %q", list)
	}

	if err := os.RemoveAll(filepath.Join(base, "api")); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "projects", "list", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(missing)") || !strings.Contains(out, filepath.Join(base, "shop")) {
		t.Errorf("list output = %q", out)
	}
}

func TestShowRaw(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())
	cfg, _ := config.Resolve(cfgPath)
	if err := os.WriteFile(cfg.ArtifactPath(), []byte("# Context\nGo 1.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "show", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "# Context\nGo 1.25\n" {
		t.Errorf("show output = %q", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := renderMarkdown("# Context\n\n- docker 27\n", 80)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Context") || !strings.Contains(out, "docker 27") {
		t.Errorf("rendered = %q", out)
	}
}

func TestPingWithoutDaemon(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "none.sock")
	if _, err := run(t, "ping", "--socket", sock); err == nil {
		t.Error("expected dial error")
	}
}

func TestPrintReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rep := &daemon.Report{
		ID:           "c1",
		StartedAt:    start,
		FinishedAt:   start.Add(2 * time.Second),
		Commands:     9,
		Failures:     1,
		SnapshotPath: "/x/snapshot.txt",
		Projects: []daemon.ProjectStatus{
			{Name: "shop", Status: daemon.ProjectOK, Commands: 3, Failures: 1},
		},
		Warnings: []string{"summarizer unavailable"},
	}

	var b bytes.Buffer
	printReport(&b, rep, start.Add(time.Minute))
	out := b.String()
	for _, want := range []string{
		"cycle:     c1",
		"took 2s",
		"commands:  9 (1 failed)",
		"artifact:  not written",
		"shop",
		"warning: summarizer unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
