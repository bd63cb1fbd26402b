// Package projects reads and writes the markdown list of project
// identifiers that the loop visits each cycle.
package projects

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// listMarkers are the markdown bullet characters that make a line count as
// a project entry.
const listMarkers = "-*+"

// Parse returns the project identifiers in r in file order. Only lines that
// start with a list marker qualify. The marker is removed, then dashes and
// whitespace are trimmed from both ends; empty entries are dropped.
// Duplicates are kept.
func Parse(r io.Reader) []string {
	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.ContainsRune(listMarkers, rune(line[0])) {
			continue
		}
		name := strings.Trim(line[1:], "- \t\r\n")
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Load reads the project list at path. A missing file returns an empty list
// and an error wrapping fs.ErrNotExist.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project list: %w", err)
	}
	defer f.Close()
	return Parse(f), nil
}

// Format renders names as a markdown list that Parse reads back unchanged.
func Format(names []string) string {
	var b strings.Builder
	b.WriteString("# Projects\n\n")
	for _, n := range names {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	return b.String()
}

// WriteList writes names to path, creating parent directories.
func WriteList(path string, names []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create list dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Format(names)), 0o644); err != nil {
		return fmt.Errorf("write project list: %w", err)
	}
	return nil
}
