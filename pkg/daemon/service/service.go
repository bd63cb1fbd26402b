// Package service manages the cursorboostd systemd user service unit.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	sddbus "github.com/coreos/go-systemd/v22/dbus"
)

const (
	unitName   = "cursorboostd.service"
	binaryName = "cursorboostd"
)

// Unit describes the installed service.
type Unit struct {
	Binary     string // absolute path to cursorboostd
	ConfigPath string // passed as --config when set
	WorkDir    string // WorkingDirectory when set
	EnvFile    string // optional EnvironmentFile holding API keys
}

// UnitContents returns the systemd unit file contents.
func UnitContents(u Unit) string {
	start := u.Binary
	if u.ConfigPath != "" {
		start += " --config " + u.ConfigPath
	}

	var b strings.Builder
	b.WriteString(`[Unit]
Description=cursorboost daemon, keeps the editor context file current
After=default.target

[Service]
Type=simple
`)
	fmt.Fprintf(&b, "ExecStart=%s\n", start)
	if u.WorkDir != "" {
		fmt.Fprintf(&b, "WorkingDirectory=%s\n", u.WorkDir)
	}
	if u.EnvFile != "" {
		// The leading dash keeps the unit startable without the file.
		fmt.Fprintf(&b, "EnvironmentFile=-%s\n", u.EnvFile)
	}
	b.WriteString(`Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`)
	return b.String()
}

// UnitPath returns the path to the systemd user unit file.
func UnitPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	return filepath.Join(configDir, "systemd", "user", unitName), nil
}

// DefaultEnvFile returns the conventional environment file location.
func DefaultEnvFile() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "cursorboost", "env")
}

// LocateBinary finds cursorboostd in PATH, falling back to a sibling of the
// running executable.
func LocateBinary() (string, error) {
	if p, err := exec.LookPath(binaryName); err == nil {
		return filepath.Abs(p)
	}
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", binaryName, err)
	}
	sibling := filepath.Join(filepath.Dir(self), binaryName)
	if _, err := os.Stat(sibling); err != nil {
		return "", fmt.Errorf("%s not found in PATH or next to %s", binaryName, self)
	}
	return sibling, nil
}

// Install writes the unit file, reloads systemd, and enables+starts the service.
func Install(u Unit) error {
	if u.Binary == "" {
		bin, err := LocateBinary()
		if err != nil {
			return err
		}
		u.Binary = bin
	}
	if u.ConfigPath != "" {
		abs, err := filepath.Abs(u.ConfigPath)
		if err != nil {
			return fmt.Errorf("cannot resolve config path: %w", err)
		}
		u.ConfigPath = abs
	}

	unitPath, err := UnitPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(unitPath), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	if err := os.WriteFile(unitPath, []byte(UnitContents(u)), 0o644); err != nil {
		return fmt.Errorf("cannot write unit file: %w", err)
	}

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	return systemctl("enable", "--now", unitName)
}

// Uninstall stops+disables the service, removes the unit file, and reloads systemd.
func Uninstall() error {
	// Best-effort stop and disable; ignore errors if not running.
	_ = systemctl("stop", unitName)
	_ = systemctl("disable", unitName)

	unitPath, err := UnitPath()
	if err != nil {
		return err
	}
	if err := os.Remove(unitPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot remove unit file: %w", err)
	}
	return systemctl("daemon-reload")
}

// Status returns a human-readable status string.
func Status(ctx context.Context, socketPath string) string {
	var lines []string

	if _, err := os.Stat(socketPath); err == nil {
		lines = append(lines, "socket: active ("+socketPath+")")
	} else {
		lines = append(lines, "socket: inactive ("+socketPath+")")
	}

	unitPath, err := UnitPath()
	if err != nil {
		return strings.Join(lines, "\n")
	}
	if _, err := os.Stat(unitPath); err != nil {
		lines = append(lines, "systemd user service: not installed")
	} else {
		lines = append(lines, "systemd user service: "+activeState(ctx))
	}
	return strings.Join(lines, "\n")
}

// activeState asks the user manager over D-Bus, falling back to systemctl.
func activeState(ctx context.Context) string {
	conn, err := sddbus.NewUserConnectionContext(ctx)
	if err == nil {
		defer conn.Close()
		units, err := conn.ListUnitsByNamesContext(ctx, []string{unitName})
		if err == nil && len(units) == 1 {
			return fmt.Sprintf("%s (%s)", units[0].ActiveState, units[0].SubState)
		}
	}

	out, runErr := exec.CommandContext(ctx, "systemctl", "--user", "is-active", unitName).Output()
	state := strings.TrimSpace(string(out))
	if runErr != nil && state == "" {
		state = "unknown"
	}
	return state
}

func systemctl(args ...string) error {
	cmd := exec.Command("systemctl", append([]string{"--user"}, args...)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("systemctl --user %s: %w", strings.Join(args, " "), err)
	}
	return nil
}
