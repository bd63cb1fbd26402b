package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnitContents(t *testing.T) {
	got := UnitContents(Unit{Binary: "/usr/local/bin/cursorboostd"})

	for _, want := range []string{
		"ExecStart=/usr/local/bin/cursorboostd\n",
		"Type=simple",
		"Restart=on-failure",
		"[Install]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("unit file missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "WorkingDirectory=") || strings.Contains(got, "EnvironmentFile=") {
		t.Errorf("unexpected optional directives:\n%s", got)
	}
}

func TestUnitContentsOptions(t *testing.T) {
	got := UnitContents(Unit{
		Binary:     "/opt/cursorboostd",
		ConfigPath: "/home/dev/.cursorboost/cursorboost.yaml",
		WorkDir:    "/home/dev/work",
		EnvFile:    "/home/dev/.config/cursorboost/env",
	})

	for _, want := range []string{
		"ExecStart=/opt/cursorboostd --config /home/dev/.cursorboost/cursorboost.yaml\n",
		"WorkingDirectory=/home/dev/work\n",
		"EnvironmentFile=-/home/dev/.config/cursorboost/env\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("unit file missing %q:\n%s", want, got)
		}
	}
}

func TestUnitPath(t *testing.T) {
	path, err := UnitPath()
	if err != nil {
		t.Fatalf("UnitPath() error: %v", err)
	}
	if !strings.HasSuffix(path, "systemd/user/cursorboostd.service") {
		t.Errorf("UnitPath() = %q, want suffix systemd/user/cursorboostd.service", path)
	}
}

func TestStatusNoSocket(t *testing.T) {
	got := Status(context.Background(), filepath.Join(t.TempDir(), "missing.sock"))
	if !strings.Contains(got, "socket: inactive") {
		t.Errorf("Status() should report inactive socket, got: %s", got)
	}
}

func TestStatusWithSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "cursorboost.sock")
	if err := os.WriteFile(sock, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	got := Status(context.Background(), sock)
	if !strings.Contains(got, "socket: active") {
		t.Errorf("Status() should report active socket, got: %s", got)
	}
}
