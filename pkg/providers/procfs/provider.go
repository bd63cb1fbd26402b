package procfs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Provider lists interesting development processes from /proc.
type Provider struct {
	root   string
	logger *slog.Logger
}

// New creates a process probe reading /proc.
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{root: "/proc", logger: logger}
}

// SetRoot points the probe at another proc filesystem.
func (p *Provider) SetRoot(root string) {
	p.root = root
}

func (p *Provider) Name() string { return "processes" }

// Process is one matching /proc entry.
type Process struct {
	PID      int
	Cmdline  string
	RSSBytes uint64
}

// List returns interesting processes sorted by PID.
func (p *Provider) List(ctx context.Context) ([]Process, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.root, err)
	}

	var procs []Process
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}

		cmdline, err := os.ReadFile(filepath.Join(p.root, e.Name(), "cmdline"))
		if err != nil {
			continue
		}
		cmd := strings.TrimSpace(string(bytes.ReplaceAll(cmdline, []byte{0}, []byte{' '})))
		if cmd == "" || !isInteresting(cmd) {
			continue
		}

		procs = append(procs, Process{PID: pid, Cmdline: cmd, RSSBytes: readRSS(filepath.Join(p.root, e.Name(), "status"))})
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	return procs, nil
}

// Probe renders the interesting processes, one per line.
func (p *Provider) Probe(ctx context.Context, _ string) (string, error) {
	procs, err := p.List(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, pr := range procs {
		fmt.Fprintf(&b, "%d %s", pr.PID, pr.Cmdline)
		if pr.RSSBytes > 0 {
			fmt.Fprintf(&b, " (rss %s)", humanize.IBytes(pr.RSSBytes))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// readRSS returns VmRSS from a /proc/<pid>/status file, or 0.
func readRSS(path string) uint64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "VmRSS:"))
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}

// isInteresting returns true if the process is worth showing.
func isInteresting(cmdline string) bool {
	interesting := []string{
		"nginx", "php-fpm", "php", "node", "npm", "redis", "mysql", "mariadbd",
		"postgres", "docker", "artisan", "queue:work", "schedule:",
		"python", "gunicorn", "uvicorn", "java", "reverb",
	}
	lower := strings.ToLower(cmdline)
	for _, kw := range interesting {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
