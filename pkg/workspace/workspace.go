// Package workspace maps project identifiers to directories under the
// configured base path. It never changes the process working directory;
// callers hand the resolved path to the runner.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrBasePathUnset means no base path was configured.
	ErrBasePathUnset = errors.New("project base path is not configured")

	// ErrProjectNotFound means the project directory does not exist.
	ErrProjectNotFound = errors.New("project directory not found")
)

// Resolver resolves project identifiers against a base path.
type Resolver struct {
	base string
}

// NewResolver creates a resolver. ~ and ${home} in base expand to the user
// home directory.
func NewResolver(base string) *Resolver {
	return &Resolver{base: ExpandHome(strings.TrimSpace(base))}
}

// Base returns the expanded base path.
func (r *Resolver) Base() string {
	return r.base
}

// Resolve returns the absolute directory of project.
func (r *Resolver) Resolve(project string) (string, error) {
	if r.base == "" {
		return "", ErrBasePathUnset
	}
	if project == "" {
		return "", fmt.Errorf("%w: empty project identifier", ErrProjectNotFound)
	}

	dir := filepath.Join(r.base, project)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrProjectNotFound, abs)
	}
	return abs, nil
}

// ExpandHome replaces ${home} and a leading ~ with the user home directory.
// p is returned unchanged when the home directory is unknown.
func ExpandHome(p string) string {
	if !strings.Contains(p, "${home}") && !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	p = strings.ReplaceAll(p, "${home}", home)
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
