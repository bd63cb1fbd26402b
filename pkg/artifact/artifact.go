// Package artifact persists the snapshot document and assembles the derived
// context file.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Section headers of the derived artifact.
const (
	DockerHeader  = "# Docker Container Logs:"
	ServiceHeader = "# Service Logs:"
)

// Parts are the pieces of the derived artifact.
type Parts struct {
	Description string // already formatted by FormatDescription, may be empty
	Summary     string
	DockerLogs  string
	ServiceLogs string // omitted entirely when empty
}

// Compose lays out the derived artifact: description, summary, then the
// labeled log sections.
func Compose(p Parts) string {
	var b strings.Builder
	b.WriteString(p.Description)
	b.WriteString(p.Summary)
	b.WriteString("\n\n")
	b.WriteString(DockerHeader)
	b.WriteString("\n\n")
	b.WriteString(p.DockerLogs)
	if p.ServiceLogs != "" {
		b.WriteString("\n\n")
		b.WriteString(ServiceHeader)
		b.WriteString("\n\n")
		b.WriteString(p.ServiceLogs)
	}
	return b.String()
}

// FormatDescription wraps the project description for the artifact header.
func FormatDescription(content string) string {
	return fmt.Sprintf("# Project Description:\n%s\n\n", content)
}

// ReadDescription returns the formatted description at path. A missing file
// yields "" and an error wrapping fs.ErrNotExist.
func ReadDescription(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read description: %w", err)
	}
	return FormatDescription(string(data)), nil
}

// IsMissing reports whether err is a missing-file error.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// WriteFile replaces path with data atomically: the content goes to a
// temporary file in the same directory which is then renamed over path.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
