package projects

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Markers are the files whose presence makes a directory a project.
var Markers = []string{
	"go.mod",
	"package.json",
	"requirements.txt",
	"pyproject.toml",
	"composer.json",
	"artisan",
	"Cargo.toml",
	"compose.yml",
	"compose.yaml",
	"docker-compose.yml",
	"docker-compose.yaml",
}

// Candidate is a directory under the base path that looks like a project.
type Candidate struct {
	Name    string   `json:"name"`
	Dir     string   `json:"dir"`
	Markers []string `json:"markers"`
}

// Discover scans the immediate subdirectories of base for project markers.
// Hidden directories are skipped. Candidates are sorted by name.
func Discover(base string) ([]Candidate, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve base: %w", err)
	}
	entries, err := os.ReadDir(absBase)
	if err != nil {
		return nil, fmt.Errorf("read base %s: %w", absBase, err)
	}

	var out []Candidate
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(absBase, e.Name())
		found := lo.Filter(Markers, func(m string, _ int) bool {
			_, err := os.Stat(filepath.Join(dir, m))
			return err == nil
		})
		if len(found) == 0 {
			continue
		}
		out = append(out, Candidate{Name: e.Name(), Dir: dir, Markers: found})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Names returns the candidate identifiers in order.
func Names(cs []Candidate) []string {
	return lo.Map(cs, func(c Candidate, _ int) string { return c.Name })
}
